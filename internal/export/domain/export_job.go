package domain

import (
	"errors"
	"fmt"
	"time"

	ingestdomain "dplus/internal/ingest/domain"
	"dplus/internal/shared/domain"
)

// ExportFormat représente le format d'export
type ExportFormat string

const (
	ExportFormatCSV     ExportFormat = "CSV"
	ExportFormatXLSX    ExportFormat = "XLSX"
	ExportFormatParquet ExportFormat = "Parquet"
)

// ExportType représente le type d'export
type ExportType string

const (
	ExportTypeOrders ExportType = "orders"
	ExportTypeStats  ExportType = "stats"
)

// ExportJob représente un job d'export
type ExportJob struct {
	format     ExportFormat
	exportType ExportType
	dateRange  domain.DateRange
	platform   string
	createdAt  time.Time
}

// NewExportJob crée un nouveau job d'export avec validation
func NewExportJob(
	format ExportFormat,
	exportType ExportType,
	dateRange domain.DateRange,
	platform string,
) (*ExportJob, error) {
	switch format {
	case ExportFormatCSV, ExportFormatXLSX, ExportFormatParquet:
	default:
		return nil, errors.New("invalid export format")
	}
	if exportType != ExportTypeOrders && exportType != ExportTypeStats {
		return nil, errors.New("invalid export type")
	}

	return &ExportJob{
		format:     format,
		exportType: exportType,
		dateRange:  dateRange,
		platform:   platform,
		createdAt:  time.Now(),
	}, nil
}

// Format retourne le format d'export
func (ej *ExportJob) Format() ExportFormat {
	return ej.format
}

// ExportType retourne le type d'export
func (ej *ExportJob) ExportType() ExportType {
	return ej.exportType
}

// DateRange retourne la période d'export
func (ej *ExportJob) DateRange() domain.DateRange {
	return ej.dateRange
}

// Platform retourne le filtre de plateforme ("" = toutes)
func (ej *ExportJob) Platform() string {
	return ej.platform
}

// CreatedAt retourne la date de création
func (ej *ExportJob) CreatedAt() time.Time {
	return ej.createdAt
}

// Filename propose un nom de fichier daté pour le job
func (ej *ExportJob) Filename() string {
	ext := "csv"
	switch ej.format {
	case ExportFormatXLSX:
		ext = "xlsx"
	case ExportFormatParquet:
		ext = "parquet"
	}
	return fmt.Sprintf("dplus_%s_%s.%s", ej.exportType, ej.createdAt.Format("20060102_150405"), ext)
}

// OrderExportRow représente une ligne d'export de commande
type OrderExportRow struct {
	OrderID          string
	Platform         ingestdomain.Platform
	ProductName      string
	Quantity         int
	SubtotalNet      float64
	OrderTotalAmount float64
	CreatedAt        time.Time
	SellerSKU        string
	ProductCategory  string
	OrderStatus      string
}

// ToCSVRow convertit en tableau pour CSV
func (r *OrderExportRow) ToCSVRow() []string {
	return []string{
		r.OrderID,
		string(r.Platform),
		r.ProductName,
		fmt.Sprintf("%d", r.Quantity),
		fmt.Sprintf("%.2f", r.SubtotalNet),
		fmt.Sprintf("%.2f", r.OrderTotalAmount),
		r.CreatedAt.Format("2006-01-02 15:04:05"),
		r.SellerSKU,
		r.ProductCategory,
		r.OrderStatus,
	}
}

// CSVHeaders retourne les en-têtes CSV
func CSVHeaders() []string {
	return []string{
		"order_id",
		"platform",
		"product_name",
		"quantity",
		"subtotal_net",
		"order_total_amount",
		"created_at",
		"seller_sku",
		"product_category",
		"order_status",
	}
}

// OrderParquet - Structure optimisée pour export Parquet
type OrderParquet struct {
	OrderID          string  `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Platform         string  `parquet:"name=platform, type=BYTE_ARRAY, convertedtype=UTF8"`
	ProductName      string  `parquet:"name=product_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Quantity         int32   `parquet:"name=quantity, type=INT32"`
	SubtotalNet      float64 `parquet:"name=subtotal_net, type=DOUBLE"`
	OrderTotalAmount float64 `parquet:"name=order_total_amount, type=DOUBLE"`
	CreatedAt        string  `parquet:"name=created_at, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderStatus      string  `parquet:"name=order_status, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ToParquet convertit une ligne d'export vers sa représentation Parquet
func (r *OrderExportRow) ToParquet() OrderParquet {
	return OrderParquet{
		OrderID:          r.OrderID,
		Platform:         string(r.Platform),
		ProductName:      r.ProductName,
		Quantity:         int32(r.Quantity),
		SubtotalNet:      r.SubtotalNet,
		OrderTotalAmount: r.OrderTotalAmount,
		CreatedAt:        r.CreatedAt.Format("2006-01-02 15:04:05"),
		OrderStatus:      r.OrderStatus,
	}
}
