package domain

import (
	"testing"
	"time"
)

func TestParseGranularity(t *testing.T) {
	for _, s := range []string{"day", "week", "month", "quarter"} {
		g, err := ParseGranularity(s)
		if err != nil {
			t.Errorf("ParseGranularity(%q): %v", s, err)
		}
		if string(g) != s {
			t.Errorf("ParseGranularity(%q) = %q", s, g)
		}
	}

	g, err := ParseGranularity("")
	if err != nil || g != GranularityDay {
		t.Errorf("granularité vide: %q, %v, attendu day", g, err)
	}

	if _, err := ParseGranularity("hour"); err == nil {
		t.Error("granularité inconnue acceptée")
	}
}

func TestCalculateChange(t *testing.T) {
	tests := []struct {
		name              string
		current, previous float64
		wantAbs, wantPct  float64
		wantDir, wantStat string
	}{
		{"hausse", 150, 100, 50, 50, "up", "changed"},
		{"baisse", 80, 100, -20, -20, "down", "changed"},
		{"stable", 100, 100, 0, 0, "neutral", "changed"},
		{"nouveau", 50, 0, 50, 100, "up", "new"},
		{"vide des deux côtés", 0, 0, 0, 0, "neutral", "no_change"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateChange(tt.current, tt.previous)
			if !almostEqual(got.Absolute, tt.wantAbs) {
				t.Errorf("Absolute = %f, attendu %f", got.Absolute, tt.wantAbs)
			}
			if !almostEqual(got.Percentage, tt.wantPct) {
				t.Errorf("Percentage = %f, attendu %f", got.Percentage, tt.wantPct)
			}
			if got.Direction != tt.wantDir {
				t.Errorf("Direction = %s, attendu %s", got.Direction, tt.wantDir)
			}
			if got.Status != tt.wantStat {
				t.Errorf("Status = %s, attendu %s", got.Status, tt.wantStat)
			}
		})
	}
}

func TestTruncatePeriod(t *testing.T) {
	// Mercredi 3 juillet 2024, 15h42
	ref := time.Date(2024, 7, 3, 15, 42, 0, 0, time.UTC)

	tests := []struct {
		g    Granularity
		want time.Time
	}{
		{GranularityDay, time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)},
		{GranularityWeek, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{GranularityMonth, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{GranularityQuarter, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := TruncatePeriod(ref, tt.g); !got.Equal(tt.want) {
			t.Errorf("TruncatePeriod(%s) = %s, attendu %s", tt.g, got, tt.want)
		}
	}

	// Un dimanche appartient à la semaine du lundi précédent
	sunday := time.Date(2024, 7, 7, 8, 0, 0, 0, time.UTC)
	if got := TruncatePeriod(sunday, GranularityWeek); !got.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("semaine du dimanche = %s", got)
	}

	// Février appartient au premier trimestre
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	if got := TruncatePeriod(feb, GranularityQuarter); !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("trimestre de février = %s", got)
	}
}

func TestPeriodLabel(t *testing.T) {
	ref := time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		g    Granularity
		want string
	}{
		{GranularityDay, "2024-11-04"},
		{GranularityWeek, "2024-11-04"},
		{GranularityMonth, "2024-11"},
		{GranularityQuarter, "2024-Q4"},
	}
	for _, tt := range tests {
		if got := PeriodLabel(ref, tt.g); got != tt.want {
			t.Errorf("PeriodLabel(%s) = %q, attendu %q", tt.g, got, tt.want)
		}
	}
}
