// Package api expose les endpoints HTTP du tableau de bord
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	analyticsapp "dplus/internal/analytics/application"
	analyticsdomain "dplus/internal/analytics/domain"
	exportapp "dplus/internal/export/application"
	exportdomain "dplus/internal/export/domain"
	ingestapp "dplus/internal/ingest/application"
	ingestinfra "dplus/internal/ingest/infrastructure"
	"dplus/internal/metrics"
	shareddomain "dplus/internal/shared/domain"
	sharedinfra "dplus/internal/shared/infrastructure"
)

const dateParamLayout = "2006-01-02"

// Server regroupe les services applicatifs derrière l'API HTTP
type Server struct {
	query   *analyticsapp.QueryService
	ingest  *ingestapp.IngestService
	export  *exportapp.ExportService
	store   *ingestinfra.Store
	logger  *sharedinfra.Logger
	metrics *metrics.Registry

	// Un seul refresh à la fois, les requêtes de lecture continuent
	refreshMu sync.Mutex
}

// NewServer crée le serveur API
func NewServer(
	query *analyticsapp.QueryService,
	ingest *ingestapp.IngestService,
	export *exportapp.ExportService,
	store *ingestinfra.Store,
	logger *sharedinfra.Logger,
	reg *metrics.Registry,
) *Server {
	return &Server{
		query:   query,
		ingest:  ingest,
		export:  export,
		store:   store,
		logger:  logger,
		metrics: reg,
	}
}

// Routes monte tous les endpoints sur un mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.Health)
	mux.HandleFunc("GET /api/dashboard", s.GetDashboard)
	mux.HandleFunc("GET /api/summary", s.GetSummary)
	mux.HandleFunc("GET /api/revenue", s.GetRevenue)
	mux.HandleFunc("GET /api/aov", s.GetAOV)
	mux.HandleFunc("GET /api/products", s.GetProducts)
	mux.HandleFunc("GET /api/portfolio-health", s.GetPortfolioHealth)
	mux.HandleFunc("GET /api/rank/top", s.GetTopPeriods)
	mux.HandleFunc("GET /api/rank/bottom", s.GetBottomPeriods)
	mux.HandleFunc("GET /api/rank/middle", s.GetMiddlePeriods)
	mux.HandleFunc("GET /api/forecast", s.GetForecast)
	mux.HandleFunc("GET /api/anomalies", s.GetAnomalies)
	mux.HandleFunc("GET /api/trend", s.GetTrend)
	mux.HandleFunc("GET /api/comparison/resolve", s.ResolveComparison)
	mux.HandleFunc("GET /api/quick-ranges", s.GetQuickRanges)
	mux.HandleFunc("GET /api/date-bounds", s.GetDateBounds)

	mux.HandleFunc("POST /api/refresh", s.Refresh)
	mux.HandleFunc("GET /api/ingest/status", s.GetIngestStatus)
	mux.HandleFunc("GET /api/ingest/integrity", s.GetIntegrity)
	mux.HandleFunc("GET /api/ingest/operations", s.GetOperations)

	mux.HandleFunc("GET /api/export/orders.csv", s.ExportOrdersCSV)
	mux.HandleFunc("GET /api/export/orders.parquet", s.ExportOrdersParquet)
	mux.HandleFunc("GET /api/export/stats.csv", s.ExportStatsCSV)
	mux.HandleFunc("GET /api/export/workbook.xlsx", s.ExportWorkbook)

	mux.Handle("GET /metrics", s.metrics.Handler())

	return mux
}

// Health handler pour GET /api/health
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetDashboard handler pour GET /api/dashboard
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dashboard, err := s.query.Dashboard(f)
	if err != nil {
		s.logger.Error("dashboard: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, dashboard)
}

// GetSummary handler pour GET /api/summary
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := s.query.Summary(f)
	if err != nil {
		s.logger.Error("summary: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, summary)
}

// GetRevenue handler pour GET /api/revenue
func (s *Server) GetRevenue(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	buckets, err := s.query.RevenueByPeriod(f)
	if err != nil {
		s.logger.Error("revenue: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{"buckets": buckets})
}

// GetAOV handler pour GET /api/aov
func (s *Server) GetAOV(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	buckets, err := s.query.AOVByPeriod(f)
	if err != nil {
		s.logger.Error("aov: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{"buckets": buckets})
}

// GetProducts handler pour GET /api/products
func (s *Server) GetProducts(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	strategy, ok := analyticsdomain.ParseProductTiering(r.URL.Query().Get("strategy"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tiering strategy")
		return
	}
	products, err := s.query.ProductMatrix(f, strategy)
	if err != nil {
		s.logger.Error("products: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{"products": products})
}

// GetPortfolioHealth handler pour GET /api/portfolio-health
func (s *Server) GetPortfolioHealth(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	strategy, ok := analyticsdomain.ParseProductTiering(r.URL.Query().Get("strategy"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tiering strategy")
		return
	}
	health, err := s.query.PortfolioHealth(f, strategy)
	if err != nil {
		s.logger.Error("portfolio health: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, health)
}

// GetTopPeriods handler pour GET /api/rank/top
func (s *Server) GetTopPeriods(w http.ResponseWriter, r *http.Request) {
	s.rankHandler(w, r, s.query.TopBuckets)
}

// GetBottomPeriods handler pour GET /api/rank/bottom
func (s *Server) GetBottomPeriods(w http.ResponseWriter, r *http.Request) {
	s.rankHandler(w, r, s.query.BottomBuckets)
}

// GetMiddlePeriods handler pour GET /api/rank/middle
func (s *Server) GetMiddlePeriods(w http.ResponseWriter, r *http.Request) {
	s.rankHandler(w, r, s.query.MiddleBuckets)
}

func (s *Server) rankHandler(w http.ResponseWriter, r *http.Request,
	fn func(analyticsapp.Filters, analyticsapp.RankMetric, int) ([]analyticsdomain.Bucket, error)) {

	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metric, err := analyticsapp.ParseRankMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := queryInt(r, "n", 5)

	buckets, err := fn(f, metric, n)
	if err != nil {
		s.logger.Error("rank: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{"buckets": buckets})
}

// GetForecast handler pour GET /api/forecast
func (s *Server) GetForecast(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	periods := queryInt(r, "periods", 30)
	confidence := queryFloat(r, "confidence", 0.95)

	forecast, err := s.query.Forecast(f, periods, confidence)
	if err != nil {
		s.logger.Error("forecast: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, forecast)
}

// GetAnomalies handler pour GET /api/anomalies
func (s *Server) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	threshold := queryFloat(r, "threshold", 2.0)
	method := analyticsdomain.AnomalyMethod(r.URL.Query().Get("method"))
	if method == "" {
		method = analyticsdomain.AnomalyZScore
	}

	points, err := s.query.Anomalies(f, threshold, method)
	if err != nil {
		s.logger.Error("anomalies: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{"anomalies": points})
}

// GetTrend handler pour GET /api/trend
func (s *Server) GetTrend(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trend, err := s.query.Trend(f)
	if err != nil {
		s.logger.Error("trend: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, trend)
}

// ResolveComparison handler pour GET /api/comparison/resolve
func (s *Server) ResolveComparison(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := shareddomain.ParseComparisonMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resolved, err := s.query.ResolveComparison(f, mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if resolved == nil {
		writeJSON(w, map[string]interface{}{"comparison": nil, "reason": "no data in comparison window"})
		return
	}
	writeJSON(w, map[string]interface{}{
		"comparison": map[string]string{
			"start": resolved.Start().Format(dateParamLayout),
			"end":   resolved.End().Format(dateParamLayout),
		},
	})
}

// GetQuickRanges handler pour GET /api/quick-ranges
func (s *Server) GetQuickRanges(w http.ResponseWriter, r *http.Request) {
	ranges, err := s.query.QuickRanges()
	if err != nil {
		s.logger.Error("quick ranges: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{"ranges": ranges})
}

// GetDateBounds handler pour GET /api/date-bounds
func (s *Server) GetDateBounds(w http.ResponseWriter, r *http.Request) {
	min, max, ok, err := s.query.DateBounds()
	if err != nil {
		s.logger.Error("date bounds: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeJSON(w, map[string]interface{}{"empty": true})
		return
	}
	writeJSON(w, map[string]interface{}{
		"empty": false,
		"min":   min.Format(dateParamLayout),
		"max":   max.Format(dateParamLayout),
	})
}

// Refresh handler pour POST /api/refresh
// Par défaut ne charge que les fichiers nouveaux ou modifiés;
// full=true force une reconstruction complète du store.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	full := r.URL.Query().Get("full") == "true"

	var (
		result *ingestapp.RebuildResult
		err    error
	)
	if full {
		result, err = s.ingest.RebuildAll()
	} else {
		needs, nerr := s.ingest.NeedsRebuild()
		if nerr != nil {
			s.logger.Error("refresh check: %v", nerr)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if needs {
			result, err = s.ingest.RebuildAll()
		} else {
			result, err = s.ingest.IngestNewFiles()
		}
	}
	if err != nil {
		s.logger.Error("refresh: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.query.InvalidateCache()
	writeJSON(w, result)
}

// GetIngestStatus handler pour GET /api/ingest/status
func (s *Server) GetIngestStatus(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.RowCount()
	if err != nil {
		s.logger.Error("ingest status: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	platforms, err := s.store.PlatformCounts()
	if err != nil {
		s.logger.Error("ingest status: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	files, err := s.store.LoadedFiles()
	if err != nil {
		s.logger.Error("ingest status: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	needsRebuild, err := s.ingest.NeedsRebuild()
	if err != nil {
		s.logger.Error("ingest status: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{
		"rows":          rows,
		"platforms":     platforms,
		"files":         files,
		"needs_rebuild": needsRebuild,
	})
}

// GetIntegrity handler pour GET /api/ingest/integrity
func (s *Server) GetIntegrity(w http.ResponseWriter, r *http.Request) {
	report, err := s.ingest.CheckIntegrity()
	if err != nil {
		s.logger.Error("integrity: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{"report": report, "ok": report.OK()})
}

// GetOperations handler pour GET /api/ingest/operations
func (s *Server) GetOperations(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	ops, err := s.store.RecentOperations(limit)
	if err != nil {
		s.logger.Error("operations: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, map[string]interface{}{"operations": ops})
}

// ExportOrdersCSV handler pour GET /api/export/orders.csv
func (s *Server) ExportOrdersCSV(w http.ResponseWriter, r *http.Request) {
	job, err := s.parseExportJob(r, exportdomain.ExportFormatCSV, exportdomain.ExportTypeOrders)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := s.export.ExportOrdersCSV(job)
	if err != nil {
		s.logger.Error("export csv: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	serveAttachment(w, data, "text/csv", job.Filename())
}

// ExportOrdersParquet handler pour GET /api/export/orders.parquet
func (s *Server) ExportOrdersParquet(w http.ResponseWriter, r *http.Request) {
	job, err := s.parseExportJob(r, exportdomain.ExportFormatParquet, exportdomain.ExportTypeOrders)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := s.export.ExportOrdersParquet(job)
	if err != nil {
		s.logger.Error("export parquet: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	serveAttachment(w, data, "application/octet-stream", job.Filename())
}

// ExportStatsCSV handler pour GET /api/export/stats.csv
func (s *Server) ExportStatsCSV(w http.ResponseWriter, r *http.Request) {
	job, err := s.parseExportJob(r, exportdomain.ExportFormatCSV, exportdomain.ExportTypeStats)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	granularity, gerr := analyticsdomain.ParseGranularity(r.URL.Query().Get("granularity"))
	if gerr != nil {
		writeError(w, http.StatusBadRequest, gerr.Error())
		return
	}
	data, err := s.export.ExportStatsCSV(job, granularity)
	if err != nil {
		s.logger.Error("export stats csv: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	serveAttachment(w, data, "text/csv", job.Filename())
}

// ExportWorkbook handler pour GET /api/export/workbook.xlsx
func (s *Server) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	job, err := s.parseExportJob(r, exportdomain.ExportFormatXLSX, exportdomain.ExportTypeStats)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	granularity, gerr := analyticsdomain.ParseGranularity(r.URL.Query().Get("granularity"))
	if gerr != nil {
		writeError(w, http.StatusBadRequest, gerr.Error())
		return
	}
	data, err := s.export.ExportWorkbook(job, granularity)
	if err != nil {
		s.logger.Error("export workbook: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	serveAttachment(w, data,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", job.Filename())
}

// parseFilters lit start, end, granularity, platform et compare depuis la query.
// Sans start/end, la période couvre toutes les données du store.
func (s *Server) parseFilters(r *http.Request) (analyticsapp.Filters, error) {
	q := r.URL.Query()
	var f analyticsapp.Filters

	granularity, err := analyticsdomain.ParseGranularity(q.Get("granularity"))
	if err != nil {
		return f, err
	}
	f.Granularity = granularity
	f.Platform = q.Get("platform")

	start, end, err := s.parseWindow(q.Get("start"), q.Get("end"))
	if err != nil {
		return f, err
	}
	f.Start = start
	f.End = end

	if mode := q.Get("compare"); mode != "" {
		parsed, err := shareddomain.ParseComparisonMode(mode)
		if err != nil {
			return f, err
		}
		resolved, err := s.query.ResolveComparison(f, parsed)
		if err != nil {
			return f, err
		}
		f.Compare = resolved
	}
	return f, nil
}

// parseWindow résout la fenêtre demandée, bornée par défaut aux données disponibles
func (s *Server) parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time

	if startStr == "" || endStr == "" {
		min, max, ok, err := s.query.DateBounds()
		if err != nil {
			return start, end, err
		}
		if !ok {
			// Store vide: fenêtre d'un jour, les requêtes retourneront vide
			today := shareddomain.Midnight(time.Now().UTC())
			min, max = today, today
		}
		start, end = min, max
	}
	if startStr != "" {
		parsed, err := time.Parse(dateParamLayout, startStr)
		if err != nil {
			return start, end, err
		}
		start = parsed
	}
	if endStr != "" {
		parsed, err := time.Parse(dateParamLayout, endStr)
		if err != nil {
			return start, end, err
		}
		end = parsed
	}
	return start, end, nil
}

func (s *Server) parseExportJob(r *http.Request,
	format exportdomain.ExportFormat, exportType exportdomain.ExportType) (*exportdomain.ExportJob, error) {

	q := r.URL.Query()
	start, end, err := s.parseWindow(q.Get("start"), q.Get("end"))
	if err != nil {
		return nil, err
	}
	dr, err := shareddomain.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return exportdomain.NewExportJob(format, exportType, dr, q.Get("platform"))
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func queryFloat(r *http.Request, name string, fallback float64) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func serveAttachment(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(data)
}
