package domain

import (
	"math"
	"testing"
	"time"
)

func dailyDates(start time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

func TestForecastRevenueLinearSeries(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dates := dailyDates(start, 10)

	// Série parfaitement linéaire: revenu = 100 + 10*jour
	revenues := make([]float64, 10)
	for i := range revenues {
		revenues[i] = 100 + 10*float64(i)
	}

	forecast := ForecastRevenue(dates, revenues, 5, 0.95)

	if forecast.Trend != TrendIncreasing {
		t.Errorf("Trend = %s, attendu increasing", forecast.Trend)
	}
	if !almostEqual(forecast.Slope, 10) {
		t.Errorf("Slope = %f, attendu 10", forecast.Slope)
	}
	if !almostEqual(forecast.Intercept, 100) {
		t.Errorf("Intercept = %f, attendu 100", forecast.Intercept)
	}
	if !almostEqual(forecast.RSquared, 1) {
		t.Errorf("RSquared = %f, attendu 1", forecast.RSquared)
	}
	if len(forecast.Points) != 5 {
		t.Fatalf("Points = %d, attendu 5", len(forecast.Points))
	}

	// Premier jour projeté: jour 10 → 200
	first := forecast.Points[0]
	if !almostEqual(first.Predicted, 200) {
		t.Errorf("première prédiction = %f, attendu 200", first.Predicted)
	}
	if !first.Date.Equal(start.AddDate(0, 0, 10)) {
		t.Errorf("première date = %s", first.Date)
	}
	if first.Lower > first.Predicted || first.Upper < first.Predicted {
		t.Errorf("intervalle incohérent: [%f, %f] autour de %f", first.Lower, first.Upper, first.Predicted)
	}
}

func TestForecastRevenueInsufficientData(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	forecast := ForecastRevenue(dailyDates(start, 4), []float64{1, 2, 3, 4}, 5, 0.95)
	if forecast.Trend != TrendInsufficient {
		t.Errorf("Trend = %s, attendu insufficient_data", forecast.Trend)
	}
	if len(forecast.Points) != 0 {
		t.Errorf("aucune projection attendue: %v", forecast.Points)
	}
}

func TestForecastRevenueNeverNegative(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dates := dailyDates(start, 10)

	// Forte pente descendante: les prédictions brutes passeraient sous zéro
	revenues := make([]float64, 10)
	for i := range revenues {
		revenues[i] = 100 - 12*float64(i)
	}

	forecast := ForecastRevenue(dates, revenues, 10, 0.95)
	for _, p := range forecast.Points {
		if p.Predicted < 0 || p.Lower < 0 {
			t.Errorf("prédiction négative: %+v", p)
		}
	}
}

func TestTrendSignificance(t *testing.T) {
	// Pente nette sur 20 points: significative et croissante
	values := make([]float64, 20)
	for i := range values {
		values[i] = 10 + 5*float64(i)
	}

	stats := TrendSignificance(values)
	if stats.Direction != TrendIncreasing {
		t.Errorf("Direction = %s", stats.Direction)
	}
	if !stats.Significant {
		t.Error("une pente parfaite doit être significative")
	}
	if !almostEqual(stats.Slope, 5) {
		t.Errorf("Slope = %f, attendu 5", stats.Slope)
	}
}

func TestTrendSignificanceInsufficientData(t *testing.T) {
	stats := TrendSignificance([]float64{1, 2})
	if stats.Direction != TrendInsufficient {
		t.Errorf("Direction = %s, attendu insufficient_data", stats.Direction)
	}
	if stats.Significant {
		t.Error("deux points ne suffisent pas à une tendance significative")
	}
}

func TestTrendSignificanceFlat(t *testing.T) {
	stats := TrendSignificance([]float64{50, 50, 50, 50, 50})
	if stats.Direction != TrendStable {
		t.Errorf("Direction = %s, attendu stable", stats.Direction)
	}
	if stats.Slope != 0 {
		t.Errorf("Slope = %f", stats.Slope)
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	got := MovingAverage(values, 3)
	// Fenêtres incomplètes: moyenne des points disponibles
	want := []float64{10, 15, 20, 30, 40}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("ma[%d] = %f, attendu %f", i, got[i], want[i])
		}
	}
}

func TestMovingAverageWindowOne(t *testing.T) {
	values := []float64{1, 2, 3}
	got := MovingAverage(values, 1)
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("fenêtre 1: la série doit être copiée telle quelle")
		}
	}
}

func TestNormalQuantile(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0.5, 0},
		{0.975, 1.959964},
		{0.95, 1.644854},
		{0.025, -1.959964},
	}
	for _, tt := range tests {
		got := normalQuantile(tt.p)
		if math.Abs(got-tt.want) > 1e-4 {
			t.Errorf("normalQuantile(%.3f) = %f, attendu %f", tt.p, got, tt.want)
		}
	}

	// L'inverse doit retomber sur la probabilité de départ
	for _, p := range []float64{0.01, 0.3, 0.5, 0.7, 0.99} {
		if got := normalCDF(normalQuantile(p)); math.Abs(got-p) > 1e-6 {
			t.Errorf("normalCDF(normalQuantile(%.2f)) = %f", p, got)
		}
	}
}
