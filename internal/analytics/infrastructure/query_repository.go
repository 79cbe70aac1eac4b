package infrastructure

import (
	"database/sql"
	"strings"
	"time"

	"dplus/internal/analytics/domain"
	ingestdomain "dplus/internal/ingest/domain"
	shareddomain "dplus/internal/shared/domain"
	"dplus/internal/shared/infrastructure"
)

const dateLayout = "2006-01-02"

// QueryRepository lectures agrégées sur les OrderLines.
// Les agrégats SQL sont au grain jour / produit; les regroupements
// semaine/mois/trimestre sont faits par la couche application.
type QueryRepository struct {
	infrastructure.BaseRepository
	excludedStatuses []string
}

// NewQueryRepository crée un repository avec la blacklist de statuts exclus
func NewQueryRepository(db *sql.DB, driver string, excludedStatuses []string) *QueryRepository {
	lowered := make([]string, 0, len(excludedStatuses))
	for _, s := range excludedStatuses {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			lowered = append(lowered, s)
		}
	}
	return &QueryRepository{
		BaseRepository:   infrastructure.NewBaseRepository(db, driver),
		excludedStatuses: lowered,
	}
}

// statusFilter construit la clause d'exclusion des statuts et ses arguments.
// Blacklist, pas whitelist: un statut inconnu est inclus par défaut.
func (r *QueryRepository) statusFilter() (string, []interface{}) {
	if len(r.excludedStatuses) == 0 {
		return "", nil
	}
	args := make([]interface{}, len(r.excludedStatuses))
	for i, s := range r.excludedStatuses {
		args[i] = s
	}
	return " AND LOWER(order_status) NOT IN (" +
		infrastructure.Placeholders(len(r.excludedStatuses)) + ")", args
}

// platformFilter construit la clause optionnelle de plateforme
func platformFilter(platform string) (string, []interface{}) {
	if platform == "" || strings.EqualFold(platform, "all") {
		return "", nil
	}
	return " AND platform = ?", []interface{}{platform}
}

// DailyBuckets agrège revenu, commandes distinctes et quantité par (jour, plateforme)
func (r *QueryRepository) DailyBuckets(dr shareddomain.DateRange, platform string) ([]domain.Bucket, error) {
	query := `
		SELECT date, platform,
		       COALESCE(SUM(subtotal_net), 0) AS revenue,
		       COUNT(DISTINCT order_id) AS orders,
		       COALESCE(SUM(quantity), 0) AS quantity
		FROM order_lines
		WHERE date >= ? AND date <= ?`
	args := []interface{}{dr.Start().Format(dateLayout), dr.End().Format(dateLayout)}

	clause, extra := platformFilter(platform)
	query += clause
	args = append(args, extra...)

	clause, extra = r.statusFilter()
	query += clause
	args = append(args, extra...)

	query += `
		GROUP BY date, platform
		ORDER BY date, platform`

	rows, err := r.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.Bucket
	for rows.Next() {
		var b domain.Bucket
		var date, plat string
		if err := rows.Scan(&date, &plat, &b.Revenue, &b.Orders, &b.Quantity); err != nil {
			return nil, err
		}
		b.Period, _ = time.Parse(dateLayout, date)
		b.Platform = ingestdomain.Platform(plat)
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// ProductStats agrège par (produit, plateforme) sur toute la période,
// revenu décroissant
func (r *QueryRepository) ProductStats(dr shareddomain.DateRange, platform string) ([]domain.ProductStat, error) {
	query := `
		SELECT product_name, platform,
		       COALESCE(SUM(subtotal_net), 0) AS revenue,
		       COALESCE(SUM(quantity), 0) AS quantity,
		       COUNT(DISTINCT order_id) AS orders
		FROM order_lines
		WHERE date >= ? AND date <= ?`
	args := []interface{}{dr.Start().Format(dateLayout), dr.End().Format(dateLayout)}

	clause, extra := platformFilter(platform)
	query += clause
	args = append(args, extra...)

	clause, extra = r.statusFilter()
	query += clause
	args = append(args, extra...)

	query += `
		GROUP BY product_name, platform
		ORDER BY revenue DESC, product_name`

	rows, err := r.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.ProductStat
	for rows.Next() {
		var p domain.ProductStat
		var plat string
		if err := rows.Scan(&p.ProductName, &plat, &p.Revenue, &p.Quantity, &p.Orders); err != nil {
			return nil, err
		}
		p.Platform = ingestdomain.Platform(plat)
		stats = append(stats, p)
	}
	return stats, rows.Err()
}

// SummaryMetrics calcule les métriques globales d'une période en une requête
func (r *QueryRepository) SummaryMetrics(dr shareddomain.DateRange, platform string) (domain.SummaryMetrics, error) {
	query := `
		SELECT COALESCE(SUM(subtotal_net), 0) AS revenue,
		       COUNT(DISTINCT order_id) AS orders,
		       COALESCE(SUM(quantity), 0) AS quantity,
		       COUNT(DISTINCT product_name) AS products
		FROM order_lines
		WHERE date >= ? AND date <= ?`
	args := []interface{}{dr.Start().Format(dateLayout), dr.End().Format(dateLayout)}

	clause, extra := platformFilter(platform)
	query += clause
	args = append(args, extra...)

	clause, extra = r.statusFilter()
	query += clause
	args = append(args, extra...)

	var m domain.SummaryMetrics
	err := r.QueryRow(query, args...).Scan(&m.TotalRevenue, &m.TotalOrders, &m.TotalQuantity, &m.ProductCount)
	if err != nil {
		return m, err
	}
	if m.TotalOrders > 0 {
		m.AOV = m.TotalRevenue / float64(m.TotalOrders)
	}
	return m, nil
}

// DateBounds retourne les dates extrêmes connues du store; ok=false si vide
func (r *QueryRepository) DateBounds() (time.Time, time.Time, bool, error) {
	var minDate, maxDate sql.NullString
	err := r.QueryRow(`SELECT MIN(date), MAX(date) FROM order_lines`).Scan(&minDate, &maxDate)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !minDate.Valid || !maxDate.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	lo, _ := time.Parse(dateLayout, minDate.String)
	hi, _ := time.Parse(dateLayout, maxDate.String)
	return lo, hi, true, nil
}
