package application

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xuri/excelize/v2"

	analyticsapp "dplus/internal/analytics/application"
	analyticsdomain "dplus/internal/analytics/domain"
	"dplus/internal/export/domain"
	"dplus/internal/export/infrastructure"
	sharedinfra "dplus/internal/shared/infrastructure"
)

// ExportService produit les exports CSV, XLSX et Parquet
type ExportService struct {
	repo   *infrastructure.ExportQueryRepository
	query  *analyticsapp.QueryService
	logger *sharedinfra.Logger
}

// NewExportService crée un service d'export
func NewExportService(
	repo *infrastructure.ExportQueryRepository,
	query *analyticsapp.QueryService,
	logger *sharedinfra.Logger,
) *ExportService {
	return &ExportService{repo: repo, query: query, logger: logger}
}

// ExportOrdersCSV exporte les lignes de commande d'une période en CSV
func (s *ExportService) ExportOrdersCSV(job *domain.ExportJob) ([]byte, error) {
	rows, err := s.repo.GetOrderLines(job.DateRange(), job.Platform())
	if err != nil {
		return nil, fmt.Errorf("export query: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(domain.CSVHeaders()); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row.ToCSVRow()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info("export: %d order rows to CSV (%s)", len(rows), job.DateRange())
	return buf.Bytes(), nil
}

// ExportOrdersParquet exporte les lignes de commande en Parquet compressé Snappy
func (s *ExportService) ExportOrdersParquet(job *domain.ExportJob) ([]byte, error) {
	rows, err := s.repo.GetOrderLines(job.DateRange(), job.Platform())
	if err != nil {
		return nil, fmt.Errorf("export query: %w", err)
	}

	fw, err := buffer.NewBufferFile(nil)
	if err != nil {
		return nil, fmt.Errorf("parquet buffer: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(domain.OrderParquet), 2)
	if err != nil {
		return nil, fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row.ToParquet()); err != nil {
			return nil, fmt.Errorf("parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("parquet finalize: %w", err)
	}

	bf, ok := fw.(buffer.BufferFile)
	if !ok {
		return nil, fmt.Errorf("unexpected parquet file type %T", fw)
	}
	s.logger.Info("export: %d order rows to Parquet (%s)", len(rows), job.DateRange())
	return bf.Bytes(), nil
}

// ExportStatsCSV exporte les agrégats par période en CSV
func (s *ExportService) ExportStatsCSV(job *domain.ExportJob, granularity analyticsdomain.Granularity) ([]byte, error) {
	buckets, err := s.query.RevenueByPeriod(analyticsapp.Filters{
		Start:       job.DateRange().Start(),
		End:         job.DateRange().End(),
		Granularity: granularity,
		Platform:    job.Platform(),
	})
	if err != nil {
		return nil, fmt.Errorf("export stats: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"period", "platform", "revenue", "orders", "quantity", "aov", "segment"}); err != nil {
		return nil, err
	}
	for _, b := range buckets {
		record := []string{
			b.Label,
			string(b.Platform),
			strconv.FormatFloat(b.Revenue, 'f', 2, 64),
			strconv.Itoa(b.Orders),
			strconv.Itoa(b.Quantity),
			strconv.FormatFloat(b.AOV, 'f', 2, 64),
			string(b.Segment),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportWorkbook produit un classeur Excel à trois feuilles: résumé,
// revenu par période, matrice produits. Les trois jeux de données sont
// collectés en parallèle par un pool de workers.
func (s *ExportService) ExportWorkbook(job *domain.ExportJob, granularity analyticsdomain.Granularity) ([]byte, error) {
	filters := analyticsapp.Filters{
		Start:       job.DateRange().Start(),
		End:         job.DateRange().End(),
		Granularity: granularity,
		Platform:    job.Platform(),
	}

	var (
		summary  analyticsdomain.SummaryMetrics
		buckets  []analyticsdomain.Bucket
		products []analyticsdomain.ProductStat
	)

	pool := sharedinfra.NewWorkerPool(3)
	pool.Start()
	tasks := []sharedinfra.Task{
		func() error {
			var err error
			summary, err = s.query.Summary(filters)
			return err
		},
		func() error {
			var err error
			buckets, err = s.query.RevenueByPeriod(filters)
			return err
		},
		func() error {
			var err error
			products, err = s.query.ProductMatrix(filters, analyticsdomain.TieringRank)
			return err
		},
	}
	for _, task := range tasks {
		if err := pool.Submit(task); err != nil {
			pool.Stop()
			return nil, err
		}
	}
	pool.Wait()
	if err := pool.CollectErrors(); err != nil {
		return nil, fmt.Errorf("export workbook: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	// Feuille Summary
	const summarySheet = "Summary"
	f.SetSheetName("Sheet1", summarySheet)
	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Revenue", summary.TotalRevenue},
		{"Total Orders", summary.TotalOrders},
		{"Total Quantity", summary.TotalQuantity},
		{"AOV", summary.AOV},
		{"Products", summary.ProductCount},
		{"Period", job.DateRange().String()},
	}
	for i, row := range summaryRows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", bold); err != nil {
		return nil, err
	}

	// Feuille Revenue
	const revenueSheet = "Revenue"
	if _, err := f.NewSheet(revenueSheet); err != nil {
		return nil, err
	}
	header := []interface{}{"Period", "Platform", "Revenue", "Orders", "Quantity", "AOV", "Segment"}
	if err := f.SetSheetRow(revenueSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, b := range buckets {
		row := []interface{}{b.Label, string(b.Platform), b.Revenue, b.Orders, b.Quantity, b.AOV, string(b.Segment)}
		if err := f.SetSheetRow(revenueSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(revenueSheet, "A1", "G1", bold); err != nil {
		return nil, err
	}

	// Feuille Products
	const productsSheet = "Products"
	if _, err := f.NewSheet(productsSheet); err != nil {
		return nil, err
	}
	header = []interface{}{"Product", "Platform", "Revenue", "Quantity", "Orders", "Segment"}
	if err := f.SetSheetRow(productsSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, p := range products {
		row := []interface{}{p.ProductName, string(p.Platform), p.Revenue, p.Quantity, p.Orders, string(p.Segment)}
		if err := f.SetSheetRow(productsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(productsSheet, "A1", "F1", bold); err != nil {
		return nil, err
	}

	out, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export: workbook with %d buckets, %d products (%s)",
		len(buckets), len(products), job.DateRange())
	return out.Bytes(), nil
}
