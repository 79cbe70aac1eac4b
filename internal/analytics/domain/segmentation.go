package domain

// Segment étiquette de palier pour les agrégats temporels
type Segment string

const (
	SegmentMax    Segment = "Max"
	SegmentMiddle Segment = "Middle"
	SegmentMin    Segment = "Min"
)

// ProductSegment étiquette de palier pour les produits
type ProductSegment string

const (
	ProductHero   ProductSegment = "Hero"
	ProductCore   ProductSegment = "Core"
	ProductVolume ProductSegment = "Volume"
)

// Seuils de segmentation
const (
	// minSampleSize en dessous, les centiles ne sont pas stables: tout est Middle
	minSampleSize = 5

	revenueTopQuantile    = 0.80
	revenueBottomQuantile = 0.20

	aovHighMultiplier = 1.2
	aovLowMultiplier  = 0.8

	heroRankThreshold   = 0.80
	volumeRankThreshold = 0.40

	legacyHeroQuantile = 0.67
)

// LabelByPercentile étiquette chaque valeur contre les centiles 80/20 de la série.
// Max = strictement au-dessus du 80e, Min = strictement en dessous du 20e.
// Moins de 5 points ou distribution dégénérée (p80 == p20): tout Middle.
func LabelByPercentile(values []float64) []Segment {
	labels := make([]Segment, len(values))
	for i := range labels {
		labels[i] = SegmentMiddle
	}
	if len(values) < minSampleSize {
		return labels
	}

	top := Quantile(values, revenueTopQuantile)
	bottom := Quantile(values, revenueBottomQuantile)
	if top == bottom {
		return labels
	}

	for i, v := range values {
		if v > top {
			labels[i] = SegmentMax
		} else if v < bottom {
			labels[i] = SegmentMin
		}
	}
	return labels
}

// LabelByMeanMultiplier étiquette chaque valeur contre la moyenne de la série:
// Max au-delà de moyenne×1.2, Min en deçà de moyenne×0.8.
// Convention alternative utilisée par la vue AOV temporelle.
func LabelByMeanMultiplier(values []float64) []Segment {
	labels := make([]Segment, len(values))
	for i := range labels {
		labels[i] = SegmentMiddle
	}

	mean := Mean(values)
	if mean == 0 {
		return labels
	}

	for i, v := range values {
		if v > mean*aovHighMultiplier {
			labels[i] = SegmentMax
		} else if v < mean*aovLowMultiplier {
			labels[i] = SegmentMin
		}
	}
	return labels
}

// ProductTiering stratégie de segmentation produit
type ProductTiering string

const (
	// TieringRank version par rang centile: Hero >= 0.8, Volume <= 0.4
	TieringRank ProductTiering = "rank"
	// TieringQuantile version historique: Hero = revenu >= quantile 0.67,
	// Volume = revenu sous le seuil et quantité >= médiane
	TieringQuantile ProductTiering = "quantile"
)

// ParseProductTiering valide une stratégie reçue de l'extérieur
func ParseProductTiering(s string) (ProductTiering, bool) {
	switch ProductTiering(s) {
	case TieringRank, TieringQuantile:
		return ProductTiering(s), true
	case "":
		return TieringRank, true
	}
	return "", false
}

// LabelProducts étiquette les produits d'une même partition plateforme.
// revenues et quantities sont alignés par indice. Un seul produit: Core.
func LabelProducts(revenues, quantities []float64, strategy ProductTiering) []ProductSegment {
	labels := make([]ProductSegment, len(revenues))
	for i := range labels {
		labels[i] = ProductCore
	}
	if len(revenues) <= 1 {
		return labels
	}

	switch strategy {
	case TieringQuantile:
		threshold := Quantile(revenues, legacyHeroQuantile)
		qtyMedian := Median(quantities)
		for i, rev := range revenues {
			if rev >= threshold {
				labels[i] = ProductHero
			} else if quantities[i] >= qtyMedian {
				labels[i] = ProductVolume
			}
		}
	default:
		ranks := PercentileRanks(revenues)
		for i, r := range ranks {
			if r >= heroRankThreshold {
				labels[i] = ProductHero
			} else if r <= volumeRankThreshold {
				labels[i] = ProductVolume
			}
		}
	}
	return labels
}

// RiskLevel niveau de risque du portefeuille produits
type RiskLevel string

const (
	RiskHigh    RiskLevel = "High"
	RiskMedium  RiskLevel = "Medium"
	RiskLow     RiskLevel = "Low"
	RiskUnknown RiskLevel = "Unknown"
)

// SegmentShare part de revenu d'un segment produit
type SegmentShare struct {
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// PortfolioHealth santé du portefeuille produits
type PortfolioHealth struct {
	Segments       map[ProductSegment]SegmentShare `json:"segments"`
	TotalRevenue   float64                         `json:"total_revenue"`
	RiskLevel      RiskLevel                       `json:"risk_level"`
	Recommendation string                          `json:"recommendation"`
}

// AssessPortfolio évalue le risque de concentration à partir des produits étiquetés.
// Hero > 60% du revenu: risque élevé; Hero entre 50 et 60% ou Core < 25%: moyen.
func AssessPortfolio(products []ProductStat) PortfolioHealth {
	health := PortfolioHealth{
		Segments:       make(map[ProductSegment]SegmentShare),
		RiskLevel:      RiskUnknown,
		Recommendation: "No data available",
	}
	if len(products) == 0 {
		return health
	}

	for _, p := range products {
		share := health.Segments[p.Segment]
		share.Revenue += p.Revenue
		health.Segments[p.Segment] = share
		health.TotalRevenue += p.Revenue
	}

	for segment, share := range health.Segments {
		if health.TotalRevenue > 0 {
			share.Percentage = share.Revenue / health.TotalRevenue * 100
		}
		health.Segments[segment] = share
	}

	heroPct := health.Segments[ProductHero].Percentage
	corePct := health.Segments[ProductCore].Percentage

	switch {
	case heroPct > 60:
		health.RiskLevel = RiskHigh
		health.Recommendation = "High reliance on Hero products. Consider promoting Core products to diversify risk."
	case heroPct > 50 || corePct < 25:
		health.RiskLevel = RiskMedium
		health.Recommendation = "Core product segment is weak. Opportunity to push mid-tier products."
	default:
		health.RiskLevel = RiskLow
		health.Recommendation = "Portfolio is well-balanced across segments."
	}
	return health
}
