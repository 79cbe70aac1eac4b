package infrastructure

import (
	"database/sql"
	"strings"
	"time"

	"dplus/internal/export/domain"
	ingestdomain "dplus/internal/ingest/domain"
	shareddomain "dplus/internal/shared/domain"
	"dplus/internal/shared/infrastructure"
)

// ExportQueryRepository repository pour les requêtes d'export
type ExportQueryRepository struct {
	infrastructure.BaseRepository
}

// NewExportQueryRepository crée un nouveau repository d'export
func NewExportQueryRepository(db *sql.DB, driver string) *ExportQueryRepository {
	return &ExportQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db, driver),
	}
}

// GetOrderLines récupère les lignes de commande d'une période en une requête,
// ordre chronologique
func (r *ExportQueryRepository) GetOrderLines(dateRange shareddomain.DateRange, platform string) ([]*domain.OrderExportRow, error) {
	query := `
		SELECT order_id, platform, product_name, quantity,
		       subtotal_net, order_total_amount, created_at,
		       seller_sku, product_category, order_status
		FROM order_lines
		WHERE date >= ? AND date <= ?`
	args := []interface{}{
		dateRange.Start().Format("2006-01-02"),
		dateRange.End().Format("2006-01-02"),
	}

	if platform != "" && !strings.EqualFold(platform, "all") {
		query += ` AND platform = ?`
		args = append(args, platform)
	}
	query += ` ORDER BY created_at, order_id`

	rows, err := r.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.OrderExportRow
	for rows.Next() {
		var row domain.OrderExportRow
		var platform, createdAt string
		if err := rows.Scan(&row.OrderID, &platform, &row.ProductName, &row.Quantity,
			&row.SubtotalNet, &row.OrderTotalAmount, &createdAt,
			&row.SellerSKU, &row.ProductCategory, &row.OrderStatus); err != nil {
			return nil, err
		}
		row.Platform = ingestdomain.Platform(platform)
		row.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		out = append(out, &row)
	}
	return out, rows.Err()
}
