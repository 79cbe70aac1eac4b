package domain

import (
	"fmt"
	"math"
)

// AnomalyMethod méthode statistique de détection
type AnomalyMethod string

const (
	AnomalyZScore AnomalyMethod = "zscore"
	AnomalyIQR    AnomalyMethod = "iqr"
)

// AnomalyPoint résultat de détection pour un point de la série
type AnomalyPoint struct {
	Index     int     `json:"index"`
	Value     float64 `json:"value"`
	Score     float64 `json:"score"`
	IsAnomaly bool    `json:"is_anomaly"`
	Type      string  `json:"type"` // spike, drop ou normal
}

// DetectAnomalies repère les valeurs aberrantes d'une série.
// zscore: |écart à la moyenne| > threshold écarts-types.
// iqr: hors de [Q1 - threshold*IQR, Q3 + threshold*IQR], score = écart
// à la médiane en unités d'IQR.
func DetectAnomalies(values []float64, threshold float64, method AnomalyMethod) []AnomalyPoint {
	points := make([]AnomalyPoint, len(values))
	for i, v := range values {
		points[i] = AnomalyPoint{Index: i, Value: v, Type: "normal"}
	}
	if len(values) == 0 {
		return points
	}

	switch method {
	case AnomalyIQR:
		q1 := Quantile(values, 0.25)
		q3 := Quantile(values, 0.75)
		iqr := q3 - q1
		median := Median(values)
		lower := q1 - threshold*iqr
		upper := q3 + threshold*iqr

		for i, v := range values {
			if iqr > 0 {
				points[i].Score = (v - median) / iqr
			}
			points[i].IsAnomaly = v < lower || v > upper
		}

	default: // zscore
		mean := Mean(values)
		std := StdDev(values)
		if std == 0 {
			return points
		}
		for i, v := range values {
			points[i].Score = (v - mean) / std
			points[i].IsAnomaly = math.Abs(points[i].Score) > threshold
		}
	}

	for i := range points {
		if points[i].Score > threshold {
			points[i].Type = "spike"
		} else if points[i].Score < -threshold {
			points[i].Type = "drop"
		}
	}
	return points
}

// AlertThresholds seuils de variation déclenchant une alerte par métrique
type AlertThresholds struct {
	RevenueDrop  float64
	RevenueSpike float64
	AOVDrop      float64
	AOVSpike     float64
	OrdersDrop   float64
	OrdersSpike  float64
}

// DefaultAlertThresholds seuils par défaut des alertes de performance
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		RevenueDrop:  0.20,
		RevenueSpike: 0.50,
		AOVDrop:      0.15,
		AOVSpike:     0.30,
		OrdersDrop:   0.25,
		OrdersSpike:  0.50,
	}
}

// Alert changement de performance significatif entre deux périodes
type Alert struct {
	Metric    string  `json:"metric"`
	ChangePct float64 `json:"change_pct"`
	Severity  string  `json:"severity"` // info, warning ou critical
	Message   string  `json:"message"`
}

// DetectPerformanceChanges compare les métriques de deux périodes aux seuils.
// Une métrique précédente nulle est ignorée (pas de base de comparaison).
func DetectPerformanceChanges(current, previous SummaryMetrics, thresholds AlertThresholds) []Alert {
	checks := []struct {
		name        string
		curr, prev  float64
		drop, spike float64
	}{
		{"revenue", current.TotalRevenue, previous.TotalRevenue, thresholds.RevenueDrop, thresholds.RevenueSpike},
		{"aov", current.AOV, previous.AOV, thresholds.AOVDrop, thresholds.AOVSpike},
		{"orders", float64(current.TotalOrders), float64(previous.TotalOrders), thresholds.OrdersDrop, thresholds.OrdersSpike},
	}

	var alerts []Alert
	for _, c := range checks {
		if c.prev == 0 {
			continue
		}
		change := (c.curr - c.prev) / c.prev

		switch {
		case change <= -c.drop:
			severity := "warning"
			if change <= -0.4 {
				severity = "critical"
			}
			alerts = append(alerts, Alert{
				Metric:    c.name,
				ChangePct: change * 100,
				Severity:  severity,
				Message:   fmt.Sprintf("%s dropped %.1f%% vs previous period", c.name, -change*100),
			})
		case change >= c.spike:
			alerts = append(alerts, Alert{
				Metric:    c.name,
				ChangePct: change * 100,
				Severity:  "info",
				Message:   fmt.Sprintf("%s spiked %.1f%% vs previous period", c.name, change*100),
			})
		}
	}
	return alerts
}
