package domain

import (
	"fmt"
	"time"
)

// Platform identifie le système source d'une commande
type Platform string

const (
	PlatformTikTok Platform = "TikTok"
	PlatformShopee Platform = "Shopee"
)

// ParsePlatform valide un nom de plateforme reçu de l'extérieur
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformTikTok:
		return PlatformTikTok, nil
	case PlatformShopee:
		return PlatformShopee, nil
	}
	return "", fmt.Errorf("unknown platform: %q", s)
}

// MaxProductNameLen longueur maximale d'un nom de produit stocké (runes)
const MaxProductNameLen = 500

// UnknownProduct libellé de repli quand le nom de produit est absent
const UnknownProduct = "Unknown Product"

// UnknownStatus statut de repli quand le statut de commande est absent
const UnknownStatus = "Unknown"

// OrderLine ligne de commande canonique, une par paire (commande, produit)
type OrderLine struct {
	OrderID          string    `json:"order_id"`
	Platform         Platform  `json:"platform"`
	ProductName      string    `json:"product_name"`
	Quantity         int       `json:"quantity"`
	SubtotalNet      float64   `json:"subtotal_net"`
	OrderTotalAmount float64   `json:"order_total_amount"`
	CreatedAt        time.Time `json:"created_at"`
	Date             time.Time `json:"date"`
	SellerSKU        string    `json:"seller_sku,omitempty"`
	ProductCategory  string    `json:"product_category,omitempty"`
	OrderStatus      string    `json:"order_status"`
}

// Key retourne la clé de dédoublonnage (order_id, platform)
func (l OrderLine) Key() string {
	return l.OrderID + "|" + string(l.Platform)
}

// Valid vérifie les invariants d'une ligne prête à être stockée
func (l OrderLine) Valid() bool {
	return l.OrderID != "" && !l.CreatedAt.IsZero() &&
		l.Quantity >= 0 && l.SubtotalNet >= 0 && l.OrderTotalAmount >= 0
}
