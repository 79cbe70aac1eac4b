package domain

import (
	"math"
	"time"
)

// TrendDirection direction d'une tendance linéaire
type TrendDirection string

const (
	TrendIncreasing   TrendDirection = "increasing"
	TrendDecreasing   TrendDirection = "decreasing"
	TrendStable       TrendDirection = "stable"
	TrendInsufficient TrendDirection = "insufficient_data"
)

// ForecastPoint prédiction pour un jour futur avec intervalle de confiance
type ForecastPoint struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"ci_lower"`
	Upper     float64   `json:"ci_upper"`
}

// Forecast projection de revenu par régression linéaire
type Forecast struct {
	Points          []ForecastPoint `json:"points"`
	Trend           TrendDirection  `json:"trend"`
	Slope           float64         `json:"slope"`
	Intercept       float64         `json:"intercept"`
	RSquared        float64         `json:"r_squared"`
	PValue          float64         `json:"p_value"`
	ConfidenceLevel float64         `json:"confidence_level"`
	ProjectedTotal  float64         `json:"projected_total"`
}

const minForecastPoints = 5

// ForecastRevenue projette le revenu quotidien sur `periods` jours.
// Moins de 5 points: tendance "insufficient_data", aucune projection.
// Intervalles de confiance par approximation normale de la loi de Student.
func ForecastRevenue(dates []time.Time, revenues []float64, periods int, confidence float64) Forecast {
	if len(dates) < minForecastPoints || len(dates) != len(revenues) {
		return Forecast{Trend: TrendInsufficient, ConfidenceLevel: confidence}
	}

	first := dates[0]
	x := make([]float64, len(dates))
	for i, d := range dates {
		x[i] = d.Sub(first).Hours() / 24
	}

	slope, intercept, r, pValue := linearRegression(x, revenues)

	trend := TrendStable
	if pValue < 0.05 {
		if slope > 0 {
			trend = TrendIncreasing
		} else if slope < 0 {
			trend = TrendDecreasing
		}
	}

	n := float64(len(x))
	meanX := Mean(x)
	ssX := 0.0
	residuals := 0.0
	for i, xi := range x {
		dx := xi - meanX
		ssX += dx * dx
		resid := revenues[i] - (intercept + slope*xi)
		residuals += resid * resid
	}
	seY := math.Sqrt(residuals / (n - 2))
	z := normalQuantile((1 + confidence) / 2)

	lastDay := x[len(x)-1]
	forecast := Forecast{
		Trend:           trend,
		Slope:           slope,
		Intercept:       intercept,
		RSquared:        r * r,
		PValue:          pValue,
		ConfidenceLevel: confidence,
	}

	for i := 1; i <= periods; i++ {
		day := lastDay + float64(i)
		predicted := intercept + slope*day
		sePred := seY * math.Sqrt(1+1/n+(day-meanX)*(day-meanX)/ssX)

		point := ForecastPoint{
			Date:      first.AddDate(0, 0, int(day)),
			Predicted: math.Max(predicted, 0),
			Lower:     math.Max(predicted-z*sePred, 0),
			Upper:     predicted + z*sePred,
		}
		forecast.Points = append(forecast.Points, point)
		forecast.ProjectedTotal += point.Predicted
	}
	return forecast
}

// TrendStats statistiques de tendance d'une série temporelle
type TrendStats struct {
	Slope         float64        `json:"slope"`
	PValue        float64        `json:"p_value"`
	RSquared      float64        `json:"r_squared"`
	Direction     TrendDirection `json:"direction"`
	Significant   bool           `json:"significant"`
	PercentChange float64        `json:"percent_change"`
}

// TrendSignificance mesure la pente d'une série indexée 0..n-1 et sa
// significativité; moins de 3 points donne une tendance indéterminée
func TrendSignificance(values []float64) TrendStats {
	if len(values) < 3 {
		return TrendStats{PValue: 1, Direction: TrendInsufficient}
	}

	x := make([]float64, len(values))
	for i := range x {
		x[i] = float64(i)
	}
	slope, _, r, pValue := linearRegression(x, values)

	direction := TrendStable
	if slope > 0 {
		direction = TrendIncreasing
	} else if slope < 0 {
		direction = TrendDecreasing
	}

	stats := TrendStats{
		Slope:       slope,
		PValue:      pValue,
		RSquared:    r * r,
		Direction:   direction,
		Significant: pValue < 0.05,
	}
	if mean := Mean(values); mean != 0 {
		stats.PercentChange = slope / mean * 100
	}
	return stats
}

// MovingAverage moyenne glissante de fenêtre donnée, alignée à droite.
// Les premières fenêtres incomplètes moyennent les points disponibles.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
			out[i] = sum / float64(window)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// linearRegression moindres carrés simples; p-value par approximation
// normale du t de Student sur la pente
func linearRegression(x, y []float64) (slope, intercept, r, pValue float64) {
	n := float64(len(x))
	meanX, meanY := Mean(x), Mean(y)

	ssXY, ssX, ssY := 0.0, 0.0, 0.0
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		ssXY += dx * dy
		ssX += dx * dx
		ssY += dy * dy
	}
	if ssX == 0 {
		return 0, meanY, 0, 1
	}

	slope = ssXY / ssX
	intercept = meanY - slope*meanX
	if ssY > 0 {
		r = ssXY / math.Sqrt(ssX*ssY)
	}

	residuals := 0.0
	for i := range x {
		resid := y[i] - (intercept + slope*x[i])
		residuals += resid * resid
	}
	if n <= 2 || residuals == 0 {
		return slope, intercept, r, 0
	}
	stderr := math.Sqrt(residuals / (n - 2) / ssX)
	t := math.Abs(slope / stderr)
	pValue = 2 * (1 - normalCDF(t))
	return slope, intercept, r, pValue
}

// normalCDF fonction de répartition de la loi normale standard
func normalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normalQuantile inverse de normalCDF (approximation rationnelle d'Acklam)
func normalQuantile(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}

	a := []float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := []float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01}
	c := []float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := []float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00}

	const pLow = 0.02425
	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p > 1-pLow:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}
}
