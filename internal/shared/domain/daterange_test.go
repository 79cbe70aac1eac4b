package domain

import (
	"testing"
	"time"
)

func TestNewDateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
		days    int
	}{
		{"mois complet", day(2024, 3, 1), day(2024, 3, 31), false, 31},
		{"une seule journée", day(2024, 3, 15), day(2024, 3, 15), false, 1},
		{"fin avant début", day(2024, 3, 31), day(2024, 3, 1), true, 0},
		{"année bissextile février", day(2024, 2, 1), day(2024, 2, 29), false, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, err := NewDateRange(tt.start, tt.end)
			if tt.wantErr {
				if err == nil {
					t.Fatal("erreur attendue pour une plage inversée")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDateRange: %v", err)
			}
			if dr.Days() != tt.days {
				t.Errorf("Days() = %d, attendu %d", dr.Days(), tt.days)
			}
		})
	}
}

func TestDateRangeTruncatesToMidnight(t *testing.T) {
	// Les heures ne doivent jamais influencer les bornes
	start := time.Date(2024, 3, 1, 14, 30, 45, 0, time.UTC)
	end := time.Date(2024, 3, 2, 9, 15, 0, 0, time.UTC)

	dr, err := NewDateRange(start, end)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}
	if !dr.Start().Equal(day(2024, 3, 1)) {
		t.Errorf("Start() = %s, attendu minuit", dr.Start())
	}
	if !dr.End().Equal(day(2024, 3, 2)) {
		t.Errorf("End() = %s, attendu minuit", dr.End())
	}
}

func TestDateRangeContains(t *testing.T) {
	dr := mustRange(t, day(2024, 3, 10), day(2024, 3, 20))

	if !dr.Contains(day(2024, 3, 10)) || !dr.Contains(day(2024, 3, 20)) {
		t.Error("les bornes sont inclusives")
	}
	if dr.Contains(day(2024, 3, 9)) || dr.Contains(day(2024, 3, 21)) {
		t.Error("les dates hors bornes ne doivent pas être contenues")
	}
	// L'heure est ignorée
	if !dr.Contains(time.Date(2024, 3, 20, 23, 59, 0, 0, time.UTC)) {
		t.Error("Contains doit tronquer l'heure")
	}
}

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{day(2024, 1, 1), 1},
		{day(2024, 3, 31), 1},
		{day(2024, 4, 1), 2},
		{day(2024, 9, 30), 3},
		{day(2024, 12, 31), 4},
	}
	for _, tt := range tests {
		if got := QuarterOf(tt.date); got != tt.want {
			t.Errorf("QuarterOf(%s) = %d, attendu %d", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestQuarterBounds(t *testing.T) {
	start, end := QuarterBounds(2024, 4)
	if !start.Equal(day(2024, 10, 1)) || !end.Equal(day(2024, 12, 31)) {
		t.Errorf("QuarterBounds(2024, 4) = [%s, %s]", start, end)
	}

	start, end = QuarterBounds(2024, 1)
	if !start.Equal(day(2024, 1, 1)) || !end.Equal(day(2024, 3, 31)) {
		t.Errorf("QuarterBounds(2024, 1) = [%s, %s]", start, end)
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		// Semaine commençant le lundi
		{"mercredi", day(2024, 7, 3), day(2024, 7, 1), day(2024, 7, 7)},
		{"lundi", day(2024, 7, 1), day(2024, 7, 1), day(2024, 7, 7)},
		{"dimanche", day(2024, 7, 7), day(2024, 7, 1), day(2024, 7, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekBounds(tt.date)
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("WeekBounds(%s) = [%s, %s], attendu [%s, %s]",
					tt.date.Format("2006-01-02"), start.Format("2006-01-02"),
					end.Format("2006-01-02"), tt.wantStart.Format("2006-01-02"),
					tt.wantEnd.Format("2006-01-02"))
			}
		})
	}
}

func TestQuickRanges(t *testing.T) {
	maxDate := day(2024, 7, 15) // un lundi

	ranges := QuickRanges(maxDate)
	if len(ranges) == 0 {
		t.Fatal("QuickRanges ne doit pas être vide")
	}

	byLabel := make(map[string]QuickRange, len(ranges))
	for _, qr := range ranges {
		if qr.End.Before(qr.Start) {
			t.Errorf("%s: fin avant début", qr.Label)
		}
		byLabel[qr.Label] = qr
	}

	today, ok := byLabel["Today"]
	if !ok {
		t.Fatal("raccourci Today manquant")
	}
	if !today.Start.Equal(maxDate) || !today.End.Equal(maxDate) {
		t.Errorf("Today = [%s, %s]", today.Start, today.End)
	}

	last7, ok := byLabel["Last 7 Days"]
	if !ok {
		t.Fatal("raccourci Last 7 Days manquant")
	}
	if !last7.Start.Equal(day(2024, 7, 9)) || !last7.End.Equal(maxDate) {
		t.Errorf("Last 7 Days = [%s, %s]", last7.Start, last7.End)
	}
}
