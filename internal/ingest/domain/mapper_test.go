package domain

import "testing"

func TestMapRowTikTok(t *testing.T) {
	mapper := NewSchemaMapper()

	header := []string{"Order ID", "Created Time", "Product Name", "Quantity",
		"SKU Subtotal After Discount", "Order Status", "Unknown Column"}
	row := []string{"579123456", "15/03/2024 10:30:00", "Wireless Earbuds", "2",
		"2580.00", "Completed", "ignored"}

	record := mapper.MapRow(PlatformTikTok, header, row)

	if record.Platform != PlatformTikTok {
		t.Errorf("Platform = %s", record.Platform)
	}
	if record.Fields[FieldOrderID] != "579123456" {
		t.Errorf("order_id = %q", record.Fields[FieldOrderID])
	}
	if record.Fields[FieldCreatedAt] != "15/03/2024 10:30:00" {
		t.Errorf("created_at = %q", record.Fields[FieldCreatedAt])
	}
	if record.Fields[FieldSubtotalNet] != "2580.00" {
		t.Errorf("subtotal_net = %q", record.Fields[FieldSubtotalNet])
	}
	// Les colonnes inconnues sont ignorées, jamais une erreur
	if _, ok := record.Fields["Unknown Column"]; ok {
		t.Error("les colonnes non mappées ne doivent pas apparaître")
	}
}

func TestMapRowShopee(t *testing.T) {
	mapper := NewSchemaMapper()

	header := []string{"หมายเลขคำสั่งซื้อ", "วันที่ทำการสั่งซื้อ", "ชื่อสินค้า", "จำนวน", "ราคาขายสุทธิ", "สถานะการสั่งซื้อ"}
	row := []string{"240315SPX001", "2024-03-15 10:30", "Phone Stand", "1", "159.00", "สำเร็จแล้ว"}

	record := mapper.MapRow(PlatformShopee, header, row)

	if record.Fields[FieldOrderID] != "240315SPX001" {
		t.Errorf("order_id = %q", record.Fields[FieldOrderID])
	}
	if record.Fields[FieldOrderStatus] != "สำเร็จแล้ว" {
		t.Errorf("order_status = %q", record.Fields[FieldOrderStatus])
	}
}

func TestMapRowTrimsHeaders(t *testing.T) {
	mapper := NewSchemaMapper()

	// Les exports réels ont parfois des espaces parasites dans les en-têtes
	header := []string{" Order ID ", "Product Name  "}
	row := []string{"123", "Mug"}

	record := mapper.MapRow(PlatformTikTok, header, row)
	if record.Fields[FieldOrderID] != "123" {
		t.Errorf("order_id = %q, le trim des en-têtes a échoué", record.Fields[FieldOrderID])
	}
}

func TestMapRowShortRow(t *testing.T) {
	mapper := NewSchemaMapper()

	// Ligne plus courte que l'en-tête: champs absents, pas de panique
	header := []string{"Order ID", "Product Name", "Quantity"}
	row := []string{"123"}

	record := mapper.MapRow(PlatformTikTok, header, row)
	if record.Fields[FieldOrderID] != "123" {
		t.Errorf("order_id = %q", record.Fields[FieldOrderID])
	}
	if _, ok := record.Fields[FieldQuantity]; ok {
		t.Error("un champ au-delà de la ligne ne doit pas être renseigné")
	}
}

func TestRegisterCustomMapping(t *testing.T) {
	mapper := NewSchemaMapper()

	custom := Platform("Lazada")
	mapper.Register(custom, FieldMapping{"orderNumber": FieldOrderID})

	record := mapper.MapRow(custom, []string{"orderNumber"}, []string{"LZ-1"})
	if record.Fields[FieldOrderID] != "LZ-1" {
		t.Errorf("mapping custom non appliqué: %v", record.Fields)
	}
}

func TestMapRows(t *testing.T) {
	mapper := NewSchemaMapper()

	header := []string{"Order ID"}
	rows := [][]string{{"1"}, {"2"}, {"3"}}

	records := mapper.MapRows(PlatformTikTok, header, rows)
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, attendu 3", len(records))
	}
	if records[2].Fields[FieldOrderID] != "3" {
		t.Errorf("dernier order_id = %q", records[2].Fields[FieldOrderID])
	}
}
