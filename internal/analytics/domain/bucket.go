package domain

import (
	"fmt"
	"time"

	ingestdomain "dplus/internal/ingest/domain"
	shareddomain "dplus/internal/shared/domain"
)

// Granularity pas d'agrégation temporelle
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
)

// ParseGranularity valide une granularité reçue de l'extérieur
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityQuarter:
		return Granularity(s), nil
	case "":
		return GranularityDay, nil
	}
	return "", fmt.Errorf("unknown granularity: %q", s)
}

// PeriodType distingue la période courante de la période de comparaison
type PeriodType string

const (
	PeriodCurrent  PeriodType = "current"
	PeriodPrevious PeriodType = "previous"
)

// Bucket agrégat par (période, plateforme), recalculé à chaque requête
type Bucket struct {
	Period     time.Time              `json:"period"`
	Label      string                 `json:"label"`
	Platform   ingestdomain.Platform  `json:"platform"`
	Revenue    float64                `json:"revenue"`
	Orders     int                    `json:"orders"`
	Quantity   int                    `json:"quantity"`
	AOV        float64                `json:"aov"`
	PeriodType PeriodType             `json:"period_type"`
	Segment    Segment                `json:"segment,omitempty"`
}

// ProductStat agrégat par (produit, plateforme) sur toute la période demandée
type ProductStat struct {
	ProductName string                `json:"product_name"`
	Platform    ingestdomain.Platform `json:"platform"`
	Revenue     float64               `json:"revenue"`
	Quantity    int                   `json:"quantity"`
	Orders      int                   `json:"orders"`
	Segment     ProductSegment        `json:"segment,omitempty"`
}

// SummaryMetrics métriques globales d'une période
type SummaryMetrics struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalOrders   int     `json:"total_orders"`
	TotalQuantity int     `json:"total_quantity"`
	AOV           float64 `json:"aov"`
	ProductCount  int     `json:"product_count"`
}

// ChangeStats variation entre deux valeurs d'une même métrique
type ChangeStats struct {
	Absolute   float64 `json:"absolute"`
	Percentage float64 `json:"percentage"`
	Direction  string  `json:"direction"`
	Status     string  `json:"status"`
}

// CalculateChange compare une valeur courante à la valeur précédente.
// Un précédent nul donne "new" plutôt qu'une division par zéro.
func CalculateChange(current, previous float64) ChangeStats {
	if previous == 0 {
		if current > 0 {
			return ChangeStats{Absolute: current, Percentage: 100, Direction: "up", Status: "new"}
		}
		return ChangeStats{Direction: "neutral", Status: "no_change"}
	}

	absolute := current - previous
	percentage := absolute / previous * 100

	direction := "neutral"
	if percentage > 0 {
		direction = "up"
	} else if percentage < 0 {
		direction = "down"
	}

	return ChangeStats{
		Absolute:   absolute,
		Percentage: percentage,
		Direction:  direction,
		Status:     "changed",
	}
}

// TruncatePeriod tronque une date au début de sa période selon la granularité
func TruncatePeriod(t time.Time, g Granularity) time.Time {
	d := shareddomain.Midnight(t)
	switch g {
	case GranularityWeek:
		start, _ := shareddomain.WeekBounds(d)
		return start
	case GranularityMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case GranularityQuarter:
		start, _ := shareddomain.QuarterBounds(d.Year(), shareddomain.QuarterOf(d))
		return start
	}
	return d
}

// PeriodLabel produit un libellé stable et triable pour une période
func PeriodLabel(t time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		return t.Format("2006-01-02") // lundi de la semaine
	case GranularityMonth:
		return t.Format("2006-01")
	case GranularityQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), shareddomain.QuarterOf(t))
	}
	return t.Format("2006-01-02")
}
