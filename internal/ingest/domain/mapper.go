package domain

import "strings"

// Champs canoniques produits par le mapping
const (
	FieldOrderID          = "order_id"
	FieldOrderTotalAmount = "order_total_amount"
	FieldCreatedAt        = "created_at"
	FieldProductName      = "product_name"
	FieldQuantity         = "quantity"
	FieldSubtotalNet      = "subtotal_net"
	FieldProductCategory  = "product_category"
	FieldOrderStatus      = "order_status"
	FieldSellerSKU        = "seller_sku"
)

// FieldMapping table en-tête source → champ canonique
type FieldMapping map[string]string

// RawRecord ligne source exprimée en champs canoniques, avant nettoyage
type RawRecord struct {
	Platform Platform
	Fields   map[string]string
}

// tiktokMapping en-têtes du rapport de commandes TikTok Shop
var tiktokMapping = FieldMapping{
	"Order ID":                     FieldOrderID,
	"Order Amount":                 FieldOrderTotalAmount,
	"Created Time":                 FieldCreatedAt,
	"Product Name":                 FieldProductName,
	"Quantity":                     FieldQuantity,
	"SKU Subtotal After Discount":  FieldSubtotalNet,
	"Product Category":             FieldProductCategory,
	"Order Status":                 FieldOrderStatus,
	"Seller SKU":                   FieldSellerSKU,
}

// shopeeMapping en-têtes (thaï) de l'export de commandes Shopee
var shopeeMapping = FieldMapping{
	"หมายเลขคำสั่งซื้อ":               FieldOrderID,
	"จำนวนเงินทั้งหมด":                FieldOrderTotalAmount,
	"วันที่ทำการสั่งซื้อ":             FieldCreatedAt,
	"ชื่อสินค้า":                      FieldProductName,
	"จำนวน":                           FieldQuantity,
	"ราคาขายสุทธิ":                    FieldSubtotalNet,
	"สถานะการสั่งซื้อ":                FieldOrderStatus,
	"เลขอ้างอิง SKU (SKU Reference No.)": FieldSellerSKU,
}

// SchemaMapper traduit les lignes brutes de chaque source vers le schéma canonique.
// Ajouter une source = ajouter une table de mapping, pas de nouvelle logique.
type SchemaMapper struct {
	mappings map[Platform]FieldMapping
}

// NewSchemaMapper crée un mapper avec les tables TikTok et Shopee
func NewSchemaMapper() *SchemaMapper {
	return &SchemaMapper{
		mappings: map[Platform]FieldMapping{
			PlatformTikTok: tiktokMapping,
			PlatformShopee: shopeeMapping,
		},
	}
}

// Register ajoute ou remplace la table de mapping d'une plateforme
func (m *SchemaMapper) Register(platform Platform, mapping FieldMapping) {
	m.mappings[platform] = mapping
}

// MapRow traduit une ligne brute en RawRecord canonique.
// Fonction totale: les colonnes inconnues sont ignorées, les champs absents
// restent non renseignés.
func (m *SchemaMapper) MapRow(platform Platform, header, row []string) RawRecord {
	mapping := m.mappings[platform]
	fields := make(map[string]string, len(mapping))

	for i, col := range header {
		if i >= len(row) {
			break
		}
		canonical, ok := mapping[strings.TrimSpace(col)]
		if !ok {
			continue
		}
		fields[canonical] = row[i]
	}

	return RawRecord{Platform: platform, Fields: fields}
}

// MapRows traduit un lot complet de lignes
func (m *SchemaMapper) MapRows(platform Platform, header []string, rows [][]string) []RawRecord {
	records := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, m.MapRow(platform, header, row))
	}
	return records
}
