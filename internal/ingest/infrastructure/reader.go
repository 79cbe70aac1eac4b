package infrastructure

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowReader lit un fichier tabulaire et retourne l'en-tête et les lignes
type RowReader interface {
	ReadRows(path string) (header []string, rows [][]string, err error)
}

// ReaderFor retourne le lecteur adapté à l'extension du fichier
func ReaderFor(path string) (RowReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSVReader{}, nil
	case ".xlsx":
		return XLSXReader{}, nil
	}
	return nil, fmt.Errorf("unsupported file type: %s", path)
}

// CSVReader lit les exports CSV (TikTok)
type CSVReader struct{}

// ReadRows lit tout le fichier; les lignes de largeur variable sont acceptées
func (CSVReader) ReadRows(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := records[0]
	if len(header) > 0 {
		// Les exports TikTok commencent par un BOM UTF-8
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return header, records[1:], nil
}

// XLSXReader lit les exports Excel (Shopee)
type XLSXReader struct{}

// ReadRows lit la première feuille du classeur
func (XLSXReader) ReadRows(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets in %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}
