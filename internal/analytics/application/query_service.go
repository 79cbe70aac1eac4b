package application

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dplus/internal/analytics/domain"
	"dplus/internal/analytics/infrastructure"
	ingestdomain "dplus/internal/ingest/domain"
	"dplus/internal/metrics"
	shareddomain "dplus/internal/shared/domain"
	sharedinfra "dplus/internal/shared/infrastructure"
)

// RankMetric métrique utilisée par les classements top/bottom/middle
type RankMetric string

const (
	MetricRevenue RankMetric = "revenue"
	MetricAOV     RankMetric = "aov"
	MetricOrders  RankMetric = "orders"
)

// ParseRankMetric valide une métrique reçue de l'extérieur
func ParseRankMetric(s string) (RankMetric, error) {
	switch RankMetric(s) {
	case MetricRevenue, MetricAOV, MetricOrders:
		return RankMetric(s), nil
	case "":
		return MetricRevenue, nil
	}
	return "", fmt.Errorf("unknown metric: %q", s)
}

// Filters paramètres d'une requête d'agrégation
type Filters struct {
	Start       time.Time
	End         time.Time
	Granularity domain.Granularity
	Platform    string
	Compare     *shareddomain.DateRange
}

// invalid indique une plage incohérente; traitée en résultat vide, jamais en erreur
func (f Filters) invalid() bool {
	return f.Start.After(f.End)
}

func (f Filters) dateRange() (shareddomain.DateRange, error) {
	return shareddomain.NewDateRange(f.Start, f.End)
}

// Dashboard vue complète d'une période pour le tableau de bord
type Dashboard struct {
	Summary         domain.SummaryMetrics         `json:"summary"`
	PreviousSummary *domain.SummaryMetrics        `json:"previous_summary,omitempty"`
	Changes         map[string]domain.ChangeStats `json:"changes,omitempty"`
	Alerts          []domain.Alert                `json:"alerts,omitempty"`
	Revenue         []domain.Bucket               `json:"revenue"`
	AOV             []domain.Bucket               `json:"aov"`
	Products        []domain.ProductStat          `json:"products"`
	Health          domain.PortfolioHealth        `json:"health"`
}

// RevenueTrend tendance du revenu quotidien avec moyenne glissante
type RevenueTrend struct {
	Stats         domain.TrendStats `json:"stats"`
	Dates         []time.Time       `json:"dates"`
	Revenue       []float64         `json:"revenue"`
	MovingAverage []float64         `json:"moving_average"`
}

// QueryService moteur de requêtes: agrégation, segmentation, comparaison.
// Sans état vis-à-vis du store, sûr pour des lectures concurrentes.
type QueryService struct {
	repo     *infrastructure.QueryRepository
	cache    sharedinfra.Cache
	cacheTTL time.Duration
	logger   *sharedinfra.Logger
	metrics  *metrics.Registry
}

// NewQueryService crée un service de requêtes
func NewQueryService(
	repo *infrastructure.QueryRepository,
	cache sharedinfra.Cache,
	cacheTTL time.Duration,
	logger *sharedinfra.Logger,
	reg *metrics.Registry,
) *QueryService {
	return &QueryService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		metrics:  reg,
	}
}

// RevenueByPeriod agrège le revenu par période et plateforme, segments attachés.
// Avec comparaison: la même agrégation tourne deux fois, résultats étiquetés
// puis concaténés (pas de jointure), l'appelant aligne par libellé.
func (s *QueryService) RevenueByPeriod(f Filters) ([]domain.Bucket, error) {
	if f.invalid() {
		return nil, nil
	}

	current, err := s.aggregate(f.Start, f.End, f.Granularity, f.Platform, domain.PeriodCurrent)
	if err != nil {
		return nil, err
	}
	labelBuckets(current, MetricRevenue)

	if f.Compare == nil {
		return current, nil
	}

	previous, err := s.aggregate(f.Compare.Start(), f.Compare.End(), f.Granularity, f.Platform, domain.PeriodPrevious)
	if err != nil {
		return nil, err
	}
	labelBuckets(previous, MetricRevenue)

	return append(current, previous...), nil
}

// AOVByPeriod agrège le panier moyen par période; convention mean-multiplier
func (s *QueryService) AOVByPeriod(f Filters) ([]domain.Bucket, error) {
	if f.invalid() {
		return nil, nil
	}

	current, err := s.aggregate(f.Start, f.End, f.Granularity, f.Platform, domain.PeriodCurrent)
	if err != nil {
		return nil, err
	}
	labelBuckets(current, MetricAOV)

	if f.Compare == nil {
		return current, nil
	}

	previous, err := s.aggregate(f.Compare.Start(), f.Compare.End(), f.Granularity, f.Platform, domain.PeriodPrevious)
	if err != nil {
		return nil, err
	}
	labelBuckets(previous, MetricAOV)

	return append(current, previous...), nil
}

// ProductMatrix agrège par produit et attache les segments Hero/Core/Volume,
// calculés par partition plateforme
func (s *QueryService) ProductMatrix(f Filters, strategy domain.ProductTiering) ([]domain.ProductStat, error) {
	if f.invalid() {
		return nil, nil
	}
	dr, err := f.dateRange()
	if err != nil {
		return nil, err
	}

	products, err := s.repo.ProductStats(dr, f.Platform)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}

	// Partition par plateforme: chaque partition est segmentée indépendamment
	byPlatform := make(map[ingestdomain.Platform][]int)
	for i, p := range products {
		byPlatform[p.Platform] = append(byPlatform[p.Platform], i)
	}
	for _, indices := range byPlatform {
		revenues := make([]float64, len(indices))
		quantities := make([]float64, len(indices))
		for j, idx := range indices {
			revenues[j] = products[idx].Revenue
			quantities[j] = float64(products[idx].Quantity)
		}
		labels := domain.LabelProducts(revenues, quantities, strategy)
		for j, idx := range indices {
			products[idx].Segment = labels[j]
		}
	}
	return products, nil
}

// PortfolioHealth évalue le risque de concentration du portefeuille
func (s *QueryService) PortfolioHealth(f Filters, strategy domain.ProductTiering) (domain.PortfolioHealth, error) {
	products, err := s.ProductMatrix(f, strategy)
	if err != nil {
		return domain.PortfolioHealth{}, err
	}
	return domain.AssessPortfolio(products), nil
}

// Summary calcule les métriques globales, avec validation par value objects
func (s *QueryService) Summary(f Filters) (domain.SummaryMetrics, error) {
	if f.invalid() {
		return domain.SummaryMetrics{}, nil
	}
	dr, err := f.dateRange()
	if err != nil {
		return domain.SummaryMetrics{}, err
	}

	key := NewQueryCacheKey("summary", f).Build()
	if cached, found := s.cache.Get(key); found {
		s.metrics.CacheHits.Inc()
		return cached.(domain.SummaryMetrics), nil
	}
	s.metrics.CacheMisses.Inc()

	m, err := s.repo.SummaryMetrics(dr, f.Platform)
	if err != nil {
		return m, fmt.Errorf("summary metrics: %w", err)
	}

	// Les invariants du schéma garantissent des totaux non négatifs;
	// les value objects les re-vérifient avant exposition
	if _, err := shareddomain.NewTHB(m.TotalRevenue); err != nil {
		return m, fmt.Errorf("summary revenue: %w", err)
	}
	if _, err := shareddomain.NewQuantity(m.TotalQuantity); err != nil {
		return m, fmt.Errorf("summary quantity: %w", err)
	}

	s.cache.Set(key, m, s.cacheTTL)
	return m, nil
}

// TopBuckets périodes de rang centile >= 0.8 pour la métrique, limitées à n
func (s *QueryService) TopBuckets(f Filters, metric RankMetric, n int) ([]domain.Bucket, error) {
	return s.rankBuckets(f, metric, n, domain.TopIndices)
}

// BottomBuckets périodes de rang centile <= 0.2, limitées à n
func (s *QueryService) BottomBuckets(f Filters, metric RankMetric, n int) ([]domain.Bucket, error) {
	return s.rankBuckets(f, metric, n, domain.BottomIndices)
}

// MiddleBuckets périodes de rang entre 0.2 et 0.8 exclus, limitées à n
func (s *QueryService) MiddleBuckets(f Filters, metric RankMetric, n int) ([]domain.Bucket, error) {
	return s.rankBuckets(f, metric, n, domain.MiddleIndices)
}

func (s *QueryService) rankBuckets(f Filters, metric RankMetric, n int,
	pick func([]float64, int) []int) ([]domain.Bucket, error) {
	if f.invalid() {
		return nil, nil
	}
	buckets, err := s.aggregate(f.Start, f.End, f.Granularity, f.Platform, domain.PeriodCurrent)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = metricValue(b, metric)
	}

	indices := pick(values, n)
	out := make([]domain.Bucket, 0, len(indices))
	for _, idx := range indices {
		out = append(out, buckets[idx])
	}
	return out, nil
}

// Forecast projette le revenu quotidien total sur `periods` jours
func (s *QueryService) Forecast(f Filters, periods int, confidence float64) (domain.Forecast, error) {
	dates, revenue, err := s.dailySeries(f)
	if err != nil {
		return domain.Forecast{}, err
	}
	return domain.ForecastRevenue(dates, revenue, periods, confidence), nil
}

// Anomalies détecte les jours de revenu aberrants
func (s *QueryService) Anomalies(f Filters, threshold float64, method domain.AnomalyMethod) ([]domain.AnomalyPoint, error) {
	_, revenue, err := s.dailySeries(f)
	if err != nil {
		return nil, err
	}
	return domain.DetectAnomalies(revenue, threshold, method), nil
}

// Trend mesure la tendance du revenu quotidien avec moyenne glissante 7 jours
func (s *QueryService) Trend(f Filters) (RevenueTrend, error) {
	dates, revenue, err := s.dailySeries(f)
	if err != nil {
		return RevenueTrend{}, err
	}
	return RevenueTrend{
		Stats:         domain.TrendSignificance(revenue),
		Dates:         dates,
		Revenue:       revenue,
		MovingAverage: domain.MovingAverage(revenue, 7),
	}, nil
}

// Dashboard assemble toutes les vues d'une période.
// Les cinq sections indépendantes sont calculées en parallèle.
func (s *QueryService) Dashboard(f Filters) (*Dashboard, error) {
	if f.invalid() {
		return &Dashboard{}, nil
	}

	key := NewQueryCacheKey("dashboard", f).Build()
	if cached, found := s.cache.Get(key); found {
		s.metrics.CacheHits.Inc()
		return cached.(*Dashboard), nil
	}
	s.metrics.CacheMisses.Inc()

	start := time.Now()
	defer func() {
		s.metrics.QueryDurationSec.Observe(time.Since(start).Seconds())
	}()

	dashboard := &Dashboard{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	errChan := make(chan error, 5)

	wg.Add(1)
	go func() {
		defer wg.Done()
		summary, err := s.Summary(f)
		if err != nil {
			errChan <- fmt.Errorf("summary error: %w", err)
			return
		}
		mu.Lock()
		dashboard.Summary = summary
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if f.Compare == nil {
			return
		}
		prev, err := s.Summary(Filters{
			Start: f.Compare.Start(), End: f.Compare.End(),
			Granularity: f.Granularity, Platform: f.Platform,
		})
		if err != nil {
			errChan <- fmt.Errorf("previous summary error: %w", err)
			return
		}
		mu.Lock()
		dashboard.PreviousSummary = &prev
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		revenue, err := s.RevenueByPeriod(f)
		if err != nil {
			errChan <- fmt.Errorf("revenue error: %w", err)
			return
		}
		mu.Lock()
		dashboard.Revenue = revenue
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		aov, err := s.AOVByPeriod(f)
		if err != nil {
			errChan <- fmt.Errorf("aov error: %w", err)
			return
		}
		mu.Lock()
		dashboard.AOV = aov
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		products, err := s.ProductMatrix(f, domain.TieringRank)
		if err != nil {
			errChan <- fmt.Errorf("products error: %w", err)
			return
		}
		mu.Lock()
		dashboard.Products = products
		dashboard.Health = domain.AssessPortfolio(products)
		mu.Unlock()
	}()

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	if dashboard.PreviousSummary != nil {
		prev := *dashboard.PreviousSummary
		dashboard.Changes = map[string]domain.ChangeStats{
			"revenue":  domain.CalculateChange(dashboard.Summary.TotalRevenue, prev.TotalRevenue),
			"orders":   domain.CalculateChange(float64(dashboard.Summary.TotalOrders), float64(prev.TotalOrders)),
			"quantity": domain.CalculateChange(float64(dashboard.Summary.TotalQuantity), float64(prev.TotalQuantity)),
			"aov":      domain.CalculateChange(dashboard.Summary.AOV, prev.AOV),
		}
		dashboard.Alerts = domain.DetectPerformanceChanges(dashboard.Summary, prev, domain.DefaultAlertThresholds())
	}

	s.cache.Set(key, dashboard, s.cacheTTL)
	return dashboard, nil
}

// ResolveComparison calcule la fenêtre de comparaison, bornée aux dates du store.
// Le resolver rend la fenêtre théorique; le clamp appartient à cette couche.
func (s *QueryService) ResolveComparison(f Filters, mode shareddomain.ComparisonMode) (*shareddomain.DateRange, error) {
	dr, err := f.dateRange()
	if err != nil {
		return nil, err
	}
	window, err := shareddomain.ResolveComparison(dr, mode)
	if err != nil {
		return nil, err
	}

	lo, hi, ok, err := s.repo.DateBounds()
	if err != nil {
		return nil, fmt.Errorf("date bounds: %w", err)
	}
	if !ok {
		return &window, nil
	}

	start, end := window.Start(), window.End()
	if start.Before(lo) {
		start = lo
	}
	if end.After(hi) {
		end = hi
	}
	if end.Before(start) {
		// Fenêtre entièrement hors des données connues
		return nil, nil
	}
	clamped, err := shareddomain.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return &clamped, nil
}

// QuickRanges retourne les périodes rapides relatives à la dernière date connue
func (s *QueryService) QuickRanges() ([]shareddomain.QuickRange, error) {
	_, hi, ok, err := s.repo.DateBounds()
	if err != nil || !ok {
		return nil, err
	}
	return shareddomain.QuickRanges(hi), nil
}

// DateBounds expose les dates extrêmes connues du store
func (s *QueryService) DateBounds() (time.Time, time.Time, bool, error) {
	return s.repo.DateBounds()
}

// InvalidateCache vide le cache, à appeler après toute ingestion
func (s *QueryService) InvalidateCache() {
	s.cache.Clear()
}

// aggregate lit les agrégats journaliers puis les regroupe à la granularité
// demandée; les buckets sans commande sont omis (garde AOV)
func (s *QueryService) aggregate(start, end time.Time, g domain.Granularity,
	platform string, periodType domain.PeriodType) ([]domain.Bucket, error) {
	dr, err := shareddomain.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}

	daily, err := s.repo.DailyBuckets(dr, platform)
	if err != nil {
		return nil, fmt.Errorf("daily buckets: %w", err)
	}

	type groupKey struct {
		period   time.Time
		platform ingestdomain.Platform
	}
	groups := make(map[groupKey]*domain.Bucket)
	var order []groupKey

	for _, day := range daily {
		key := groupKey{period: domain.TruncatePeriod(day.Period, g), platform: day.Platform}
		b, ok := groups[key]
		if !ok {
			b = &domain.Bucket{
				Period:     key.period,
				Label:      domain.PeriodLabel(key.period, g),
				Platform:   key.platform,
				PeriodType: periodType,
			}
			groups[key] = b
			order = append(order, key)
		}
		b.Revenue += day.Revenue
		b.Orders += day.Orders
		b.Quantity += day.Quantity
	}

	sort.Slice(order, func(i, j int) bool {
		if !order[i].period.Equal(order[j].period) {
			return order[i].period.Before(order[j].period)
		}
		return order[i].platform < order[j].platform
	})

	buckets := make([]domain.Bucket, 0, len(order))
	for _, key := range order {
		b := groups[key]
		if b.Orders == 0 {
			continue
		}
		b.AOV = b.Revenue / float64(b.Orders)
		buckets = append(buckets, *b)
	}
	return buckets, nil
}

// dailySeries revenu quotidien toutes plateformes confondues
func (s *QueryService) dailySeries(f Filters) ([]time.Time, []float64, error) {
	if f.invalid() {
		return nil, nil, nil
	}
	buckets, err := s.aggregate(f.Start, f.End, domain.GranularityDay, f.Platform, domain.PeriodCurrent)
	if err != nil {
		return nil, nil, err
	}

	totals := make(map[time.Time]float64)
	var dates []time.Time
	for _, b := range buckets {
		if _, ok := totals[b.Period]; !ok {
			dates = append(dates, b.Period)
		}
		totals[b.Period] += b.Revenue
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	revenue := make([]float64, len(dates))
	for i, d := range dates {
		revenue[i] = totals[d]
	}
	return dates, revenue, nil
}

// labelBuckets attache les segments selon la convention de la métrique:
// centiles 80/20 pour le revenu, multiplicateur de moyenne pour l'AOV
func labelBuckets(buckets []domain.Bucket, metric RankMetric) {
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = metricValue(b, metric)
	}

	var labels []domain.Segment
	if metric == MetricAOV {
		labels = domain.LabelByMeanMultiplier(values)
	} else {
		labels = domain.LabelByPercentile(values)
	}
	for i := range buckets {
		buckets[i].Segment = labels[i]
	}
}

func metricValue(b domain.Bucket, metric RankMetric) float64 {
	switch metric {
	case MetricAOV:
		return b.AOV
	case MetricOrders:
		return float64(b.Orders)
	}
	return b.Revenue
}

// NewQueryCacheKey construit une clé de cache stable pour des filtres donnés
func NewQueryCacheKey(prefix string, f Filters) *sharedinfra.CacheKeyBuilder {
	b := sharedinfra.NewCacheKeyBuilder().
		Add(prefix).
		AddTime(f.Start).
		AddTime(f.End).
		Add(string(f.Granularity)).
		Add(strings.ToLower(f.Platform))
	if f.Compare != nil {
		b.AddTime(f.Compare.Start()).AddTime(f.Compare.End())
	}
	return b
}
