package application

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dplus/internal/ingest/domain"
	shareddomain "dplus/internal/shared/domain"
)

// Formats de date par plateforme: un format canonique essayé d'abord,
// puis des formats de repli
var (
	tiktokDateLayouts = []string{
		"02/01/2006 15:04:05", // canonique: 16/02/2026 08:55:18
		"02/01/2006 15:04",
		"2/1/2006 15:04:05",
		"02/01/2006",
		"2006-01-02 15:04:05",
	}
	shopeeDateLayouts = []string{
		"2006-01-02 15:04", // canonique: 2026-02-01 00:16
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02/01/2006 15:04",
	}
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleaningReport compte les lignes écartées à chaque étape du nettoyage
type CleaningReport struct {
	RowsIn        int `json:"rows_in"`
	Blacklisted   int `json:"blacklisted"`
	Duplicates    int `json:"duplicates"`
	InvalidDates  int `json:"invalid_dates"`
	EmptyOrderIDs int `json:"empty_order_ids"`
	RowsOut       int `json:"rows_out"`
}

// Cleaner transforme un lot de RawRecords en OrderLines valides.
// Les étapes s'appliquent dans un ordre fixe: dates, numériques, noms,
// blacklist, dédoublonnage, rejet des dates invalides, statuts.
type Cleaner struct {
	blacklist []string
	loc       *time.Location
}

// NewCleaner crée un Cleaner avec une blacklist de sous-chaînes (minuscules)
// et le fuseau horaire de normalisation
func NewCleaner(blacklist []string, loc *time.Location) *Cleaner {
	lowered := make([]string, 0, len(blacklist))
	for _, kw := range blacklist {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Cleaner{blacklist: lowered, loc: loc}
}

// Clean applique toutes les étapes de nettoyage à un lot
func (c *Cleaner) Clean(records []domain.RawRecord) ([]domain.OrderLine, CleaningReport) {
	report := CleaningReport{RowsIn: len(records)}

	lines := make([]domain.OrderLine, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		line := c.buildLine(rec)

		// Blacklist: correspondance par sous-chaîne, insensible à la casse
		if c.isBlacklisted(line.ProductName) {
			report.Blacklisted++
			continue
		}

		// Identifiant vide: jamais stocké
		if line.OrderID == "" {
			report.EmptyOrderIDs++
			continue
		}

		// Dédoublonnage intra-lot: première occurrence conservée,
		// même si elle est écartée ensuite pour date invalide
		if _, dup := seen[line.Key()]; dup {
			report.Duplicates++
			continue
		}
		seen[line.Key()] = struct{}{}

		// Date restée nulle après parsing: ligne écartée
		if line.CreatedAt.IsZero() {
			report.InvalidDates++
			continue
		}

		lines = append(lines, line)
	}

	report.RowsOut = len(lines)
	return lines, report
}

// buildLine construit une OrderLine depuis un RawRecord, champ par champ
func (c *Cleaner) buildLine(rec domain.RawRecord) domain.OrderLine {
	createdAt := c.parseDate(rec.Platform, rec.Fields[domain.FieldCreatedAt])

	line := domain.OrderLine{
		OrderID:          strings.TrimSpace(rec.Fields[domain.FieldOrderID]),
		Platform:         rec.Platform,
		ProductName:      normalizeProductName(rec.Fields[domain.FieldProductName]),
		Quantity:         int(parseNumber(rec.Fields[domain.FieldQuantity])),
		SubtotalNet:      parseNumber(rec.Fields[domain.FieldSubtotalNet]),
		OrderTotalAmount: parseNumber(rec.Fields[domain.FieldOrderTotalAmount]),
		CreatedAt:        createdAt,
		SellerSKU:        strings.TrimSpace(rec.Fields[domain.FieldSellerSKU]),
		ProductCategory:  strings.TrimSpace(rec.Fields[domain.FieldProductCategory]),
		OrderStatus:      strings.TrimSpace(rec.Fields[domain.FieldOrderStatus]),
	}

	if !createdAt.IsZero() {
		line.Date = shareddomain.Midnight(createdAt.In(c.loc))
	}
	if line.OrderStatus == "" {
		line.OrderStatus = domain.UnknownStatus
	}

	return line
}

// parseDate essaie les formats de la plateforme dans l'ordre; zéro si aucun ne passe
func (c *Cleaner) parseDate(platform domain.Platform, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	layouts := shopeeDateLayouts
	if platform == domain.PlatformTikTok {
		layouts = tiktokDateLayouts
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, c.loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// isBlacklisted teste l'appartenance du nom à la blacklist
func (c *Cleaner) isBlacklisted(name string) bool {
	if name == "" || name == domain.UnknownProduct {
		return false
	}
	lowered := strings.ToLower(name)
	for _, kw := range c.blacklist {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// normalizeProductName nettoie le nom: trim, espaces internes réduits,
// repli sur un libellé explicite, longueur bornée
func normalizeProductName(name string) string {
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return domain.UnknownProduct
	}
	if runes := []rune(name); len(runes) > domain.MaxProductNameLen {
		name = string(runes[:domain.MaxProductNameLen])
	}
	return name
}

// parseNumber convertit une valeur texte en nombre; 0 si absent ou invalide,
// jamais négatif
func parseNumber(raw string) float64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
