package infrastructure

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReaderForByExtension(t *testing.T) {
	if _, err := ReaderFor("/data/orders.csv"); err != nil {
		t.Errorf("ReaderFor(.csv): %v", err)
	}
	if _, err := ReaderFor("/data/Orders.XLSX"); err != nil {
		t.Errorf("ReaderFor(.XLSX): %v", err)
	}
	if _, err := ReaderFor("/data/orders.json"); err == nil {
		t.Error("ReaderFor doit rejeter les extensions inconnues")
	}
}

func TestCSVReaderStripsBOM(t *testing.T) {
	dir := t.TempDir()
	// BOM UTF-8 en tête, comme les exports TikTok réels
	path := writeFile(t, dir, "orders.csv", "\uFEFFOrder ID,Product Name\n123,Earbuds\n456,Mug\n")

	header, rows, err := (CSVReader{}).ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if header[0] != "Order ID" {
		t.Errorf("header[0] = %q, le BOM doit être retiré", header[0])
	}
	if len(rows) != 2 || rows[0][0] != "123" {
		t.Errorf("rows = %v", rows)
	}
}

func TestCSVReaderVariableWidth(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ragged.csv", "A,B,C\n1,2,3\n4,5\n")

	_, rows, err := (CSVReader{}).ReadRows(path)
	if err != nil {
		t.Fatalf("les lignes de largeur variable doivent passer: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, attendu 2", len(rows))
	}
}

func TestCSVReaderEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.csv", "")

	header, rows, err := (CSVReader{}).ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if header != nil || rows != nil {
		t.Errorf("fichier vide: header=%v rows=%v", header, rows)
	}
}

func TestXLSXReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.xlsx")

	f := excelize.NewFile()
	header := []interface{}{"หมายเลขคำสั่งซื้อ", "ชื่อสินค้า"}
	row := []interface{}{"240301SPX001", "Phone Stand"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	gotHeader, gotRows, err := (XLSXReader{}).ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(gotHeader) != 2 || gotHeader[0] != "หมายเลขคำสั่งซื้อ" {
		t.Errorf("header = %v", gotHeader)
	}
	if len(gotRows) != 1 || gotRows[0][0] != "240301SPX001" {
		t.Errorf("rows = %v", gotRows)
	}
}
