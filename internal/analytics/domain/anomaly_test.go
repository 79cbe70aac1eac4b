package domain

import "testing"

func TestDetectAnomaliesZScore(t *testing.T) {
	// Série plate avec un pic isolé
	values := []float64{100, 102, 98, 101, 99, 100, 300, 100, 101, 99}

	points := DetectAnomalies(values, 2.0, AnomalyZScore)
	if len(points) != len(values) {
		t.Fatalf("points = %d", len(points))
	}

	var anomalies []AnomalyPoint
	for _, p := range points {
		if p.IsAnomaly {
			anomalies = append(anomalies, p)
		}
	}
	if len(anomalies) != 1 {
		t.Fatalf("anomalies = %d, attendu 1: %+v", len(anomalies), anomalies)
	}
	if anomalies[0].Index != 6 || anomalies[0].Type != "spike" {
		t.Errorf("anomalie = %+v, attendu spike à l'indice 6", anomalies[0])
	}
}

func TestDetectAnomaliesDrop(t *testing.T) {
	values := []float64{100, 102, 98, 101, 99, 100, 5, 100, 101, 99}

	points := DetectAnomalies(values, 2.0, AnomalyZScore)
	if !points[6].IsAnomaly || points[6].Type != "drop" {
		t.Errorf("point 6 = %+v, attendu drop", points[6])
	}
}

func TestDetectAnomaliesIQR(t *testing.T) {
	values := []float64{10, 12, 11, 13, 12, 11, 100, 12, 10, 11}

	points := DetectAnomalies(values, 1.5, AnomalyIQR)

	var found bool
	for _, p := range points {
		if p.IsAnomaly {
			if p.Index != 6 {
				t.Errorf("anomalie inattendue à l'indice %d", p.Index)
			}
			found = true
		}
	}
	if !found {
		t.Error("le pic à 100 doit être détecté par la méthode IQR")
	}
}

func TestDetectAnomaliesFlatSeries(t *testing.T) {
	// Écart-type nul: aucune anomalie possible
	points := DetectAnomalies([]float64{50, 50, 50, 50}, 2.0, AnomalyZScore)
	for _, p := range points {
		if p.IsAnomaly {
			t.Errorf("point %d marqué anormal sur une série plate", p.Index)
		}
		if p.Type != "normal" {
			t.Errorf("type = %s, attendu normal", p.Type)
		}
	}
}

func TestDetectAnomaliesEmpty(t *testing.T) {
	if points := DetectAnomalies(nil, 2.0, AnomalyZScore); len(points) != 0 {
		t.Errorf("points = %v", points)
	}
}

func TestDetectPerformanceChanges(t *testing.T) {
	thresholds := DefaultAlertThresholds()

	tests := []struct {
		name         string
		current      SummaryMetrics
		previous     SummaryMetrics
		wantMetric   string
		wantSeverity string
	}{
		{
			name:         "chute de revenu",
			current:      SummaryMetrics{TotalRevenue: 700, TotalOrders: 10, AOV: 70},
			previous:     SummaryMetrics{TotalRevenue: 1000, TotalOrders: 10, AOV: 100},
			wantMetric:   "revenue",
			wantSeverity: "warning",
		},
		{
			name:         "chute critique",
			current:      SummaryMetrics{TotalRevenue: 400, TotalOrders: 10, AOV: 100},
			previous:     SummaryMetrics{TotalRevenue: 1000, TotalOrders: 10, AOV: 100},
			wantMetric:   "revenue",
			wantSeverity: "critical",
		},
		{
			name:         "pic de commandes",
			current:      SummaryMetrics{TotalRevenue: 1000, TotalOrders: 20, AOV: 100},
			previous:     SummaryMetrics{TotalRevenue: 1000, TotalOrders: 10, AOV: 100},
			wantMetric:   "orders",
			wantSeverity: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := DetectPerformanceChanges(tt.current, tt.previous, thresholds)

			var found *Alert
			for i := range alerts {
				if alerts[i].Metric == tt.wantMetric {
					found = &alerts[i]
				}
			}
			if found == nil {
				t.Fatalf("aucune alerte pour %s: %+v", tt.wantMetric, alerts)
			}
			if found.Severity != tt.wantSeverity {
				t.Errorf("sévérité = %s, attendu %s", found.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestDetectPerformanceChangesStable(t *testing.T) {
	m := SummaryMetrics{TotalRevenue: 1000, TotalOrders: 10, AOV: 100}
	if alerts := DetectPerformanceChanges(m, m, DefaultAlertThresholds()); len(alerts) != 0 {
		t.Errorf("aucune alerte attendue pour des métriques stables: %+v", alerts)
	}
}

func TestDetectPerformanceChangesNoBaseline(t *testing.T) {
	current := SummaryMetrics{TotalRevenue: 1000, TotalOrders: 10, AOV: 100}
	// Période précédente vide: pas de base de comparaison, pas d'alerte
	if alerts := DetectPerformanceChanges(current, SummaryMetrics{}, DefaultAlertThresholds()); len(alerts) != 0 {
		t.Errorf("alertes = %+v", alerts)
	}
}
