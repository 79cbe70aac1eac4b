// Génère des fichiers de commandes d'exemple (CSV TikTok + XLSX Shopee)
// dans le répertoire de données, pour tester l'ingestion de bout en bout.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
)

var products = []struct {
	name     string
	category string
	sku      string
	price    float64
}{
	{"Wireless Earbuds Pro", "Electronics", "SKU-EB-001", 1290},
	{"Phone Stand Adjustable", "Accessories", "SKU-PS-002", 159},
	{"LED Ring Light 10in", "Electronics", "SKU-RL-003", 450},
	{"Ceramic Mug Set", "Home", "SKU-MG-004", 320},
	{"Yoga Mat 6mm", "Sports", "SKU-YM-005", 590},
	{"Stainless Water Bottle", "Home", "SKU-WB-006", 280},
	{"Bluetooth Speaker Mini", "Electronics", "SKU-SP-007", 790},
	{"Desk Organizer Bamboo", "Home", "SKU-DO-008", 420},
	{"Running Socks 3-Pack", "Sports", "SKU-RS-009", 190},
	{"Laptop Sleeve 14in", "Accessories", "SKU-LS-010", 350},
}

var tiktokStatuses = []string{"Completed", "Completed", "Completed", "Shipped", "Cancelled"}
var shopeeStatuses = []string{"สำเร็จแล้ว", "สำเร็จแล้ว", "สำเร็จแล้ว", "ที่ต้องจัดส่ง", "ยกเลิกแล้ว"}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}

	dataDir := getEnv("DATA_DIR", "./data")
	days, _ := strconv.Atoi(getEnv("GEN_DAYS", "120"))
	ordersPerDay, _ := strconv.Atoi(getEnv("GEN_ORDERS_PER_DAY", "8"))

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal("❌ Erreur création répertoire:", err)
	}

	rng := rand.New(rand.NewSource(42))
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	fmt.Println("🌱 Génération des fichiers de commandes d'exemple...")

	tiktokRows := generateTikTok(rng, start, days, ordersPerDay)
	tiktokPath := filepath.Join(dataDir, fmt.Sprintf("ทั้งหมด คำสั่งซื้อ-%s.csv", end.Format("20060102")))
	if err := writeTikTokCSV(tiktokPath, tiktokRows); err != nil {
		log.Fatal("❌ Erreur écriture CSV TikTok:", err)
	}
	fmt.Printf("✅ %s (%d lignes)\n", tiktokPath, len(tiktokRows))

	shopeeRows := generateShopee(rng, start, days, ordersPerDay)
	shopeePath := filepath.Join(dataDir, fmt.Sprintf("Order.all.%s.xlsx", end.Format("20060102")))
	if err := writeShopeeXLSX(shopeePath, shopeeRows); err != nil {
		log.Fatal("❌ Erreur écriture XLSX Shopee:", err)
	}
	fmt.Printf("✅ %s (%d lignes)\n", shopeePath, len(shopeeRows))

	fmt.Println()
	fmt.Println("Vous pouvez maintenant démarrer l'application avec:")
	fmt.Println("  go run main.go")
}

// generateTikTok produit des lignes au format du rapport TikTok Shop
// (dates DD/MM/YYYY HH:MM:SS)
func generateTikTok(rng *rand.Rand, start time.Time, days, perDay int) [][]string {
	var rows [][]string
	seq := 570000000

	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		for i := 0; i < perDay; i++ {
			p := products[rng.Intn(len(products))]
			qty := 1 + rng.Intn(3)
			subtotal := p.price * float64(qty)
			created := day.Add(time.Duration(rng.Intn(24*3600)) * time.Second)
			seq++

			rows = append(rows, []string{
				strconv.Itoa(seq),
				fmt.Sprintf("%.2f", subtotal*1.05),
				created.Format("02/01/2006 15:04:05"),
				p.name,
				strconv.Itoa(qty),
				fmt.Sprintf("%.2f", subtotal),
				p.category,
				tiktokStatuses[rng.Intn(len(tiktokStatuses))],
				p.sku,
			})
		}
	}
	return rows
}

// generateShopee produit des lignes au format de l'export Shopee
// (en-têtes thaï, dates YYYY-MM-DD HH:MM)
func generateShopee(rng *rand.Rand, start time.Time, days, perDay int) [][]string {
	var rows [][]string
	seq := 0

	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		for i := 0; i < perDay; i++ {
			p := products[rng.Intn(len(products))]
			qty := 1 + rng.Intn(3)
			subtotal := p.price * float64(qty)
			created := day.Add(time.Duration(rng.Intn(24*3600)) * time.Second)
			seq++

			rows = append(rows, []string{
				fmt.Sprintf("%sSPX%06d", day.Format("060102"), seq),
				fmt.Sprintf("%.2f", subtotal*1.07),
				created.Format("2006-01-02 15:04"),
				p.name,
				strconv.Itoa(qty),
				fmt.Sprintf("%.2f", subtotal),
				shopeeStatuses[rng.Intn(len(shopeeStatuses))],
				p.sku,
			})
		}
	}
	return rows
}

func writeTikTokCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Order ID", "Order Amount", "Created Time", "Product Name", "Quantity",
		"SKU Subtotal After Discount", "Product Category", "Order Status", "Seller SKU",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeShopeeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "orders"
	f.SetSheetName("Sheet1", sheet)

	header := []interface{}{
		"หมายเลขคำสั่งซื้อ", "จำนวนเงินทั้งหมด", "วันที่ทำการสั่งซื้อ", "ชื่อสินค้า",
		"จำนวน", "ราคาขายสุทธิ", "สถานะการสั่งซื้อ", "เลขอ้างอิง SKU (SKU Reference No.)",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
