package domain

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) DateRange {
	t.Helper()
	dr, err := NewDateRange(start, end)
	if err != nil {
		t.Fatalf("plage invalide: %v", err)
	}
	return dr
}

func TestResolveComparison(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		mode      ComparisonMode
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			// Mars 2024 (31 jours) → fenêtre de même longueur juste avant
			name:      "previous_period préserve la longueur",
			start:     day(2024, 3, 1),
			end:       day(2024, 3, 31),
			mode:      ComparePreviousPeriod,
			wantStart: day(2024, 1, 30),
			wantEnd:   day(2024, 2, 29),
		},
		{
			name:      "previous_period une seule journée",
			start:     day(2024, 6, 15),
			end:       day(2024, 6, 15),
			mode:      ComparePreviousPeriod,
			wantStart: day(2024, 6, 14),
			wantEnd:   day(2024, 6, 14),
		},
		{
			name:      "previous_year simple",
			start:     day(2024, 3, 10),
			end:       day(2024, 3, 20),
			mode:      ComparePreviousYear,
			wantStart: day(2023, 3, 10),
			wantEnd:   day(2023, 3, 20),
		},
		{
			// 29 février n'existe pas en 2023
			name:      "previous_year 29 février recule au 28",
			start:     day(2024, 2, 29),
			end:       day(2024, 2, 29),
			mode:      ComparePreviousYear,
			wantStart: day(2023, 2, 28),
			wantEnd:   day(2023, 2, 28),
		},
		{
			name:      "previous_month mois calendaire précédent",
			start:     day(2024, 3, 5),
			end:       day(2024, 3, 25),
			mode:      ComparePreviousMonth,
			wantStart: day(2024, 2, 1),
			wantEnd:   day(2024, 2, 29),
		},
		{
			name:      "previous_quarter trimestre calendaire précédent",
			start:     day(2024, 5, 10),
			end:       day(2024, 5, 20),
			mode:      ComparePreviousQuarter,
			wantStart: day(2024, 1, 1),
			wantEnd:   day(2024, 3, 31),
		},
		{
			name:      "dod décale d'un jour",
			start:     day(2024, 7, 1),
			end:       day(2024, 7, 7),
			mode:      CompareDayOverDay,
			wantStart: day(2024, 6, 30),
			wantEnd:   day(2024, 7, 6),
		},
		{
			name:      "wow décale d'une semaine",
			start:     day(2024, 7, 1),
			end:       day(2024, 7, 7),
			mode:      CompareWeekOverWeek,
			wantStart: day(2024, 6, 24),
			wantEnd:   day(2024, 6, 30),
		},
		{
			// 31 mars → 28/29 février selon l'année
			name:      "mom borne les jours en fin de mois",
			start:     day(2024, 3, 31),
			end:       day(2024, 3, 31),
			mode:      CompareMonthOverMonth,
			wantStart: day(2024, 2, 29),
			wantEnd:   day(2024, 2, 29),
		},
		{
			// Q1 2025 → Q4 2024, passage d'année
			name:      "qoq_consecutive traverse l'année",
			start:     day(2025, 1, 1),
			end:       day(2025, 3, 31),
			mode:      CompareQOQConsecutive,
			wantStart: day(2024, 10, 1),
			wantEnd:   day(2024, 12, 31),
		},
		{
			name:      "qoq_yoy même trimestre l'année d'avant",
			start:     day(2025, 1, 1),
			end:       day(2025, 3, 31),
			mode:      CompareQOQYearOverYear,
			wantStart: day(2024, 1, 1),
			wantEnd:   day(2024, 3, 31),
		},
		{
			// Séquentiel: le trimestre immédiatement suivant
			name:      "qoq_sequential trimestre suivant",
			start:     day(2025, 1, 1),
			end:       day(2025, 3, 31),
			mode:      CompareQOQSequential,
			wantStart: day(2025, 4, 1),
			wantEnd:   day(2025, 6, 30),
		},
		{
			// Q4 → Q1 de l'année suivante
			name:      "qoq_sequential traverse l'année",
			start:     day(2024, 10, 1),
			end:       day(2024, 12, 31),
			mode:      CompareQOQSequential,
			wantStart: day(2025, 1, 1),
			wantEnd:   day(2025, 3, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := mustRange(t, tt.start, tt.end)

			got, err := ResolveComparison(current, tt.mode)
			if err != nil {
				t.Fatalf("ResolveComparison: %v", err)
			}
			if !got.Start().Equal(tt.wantStart) || !got.End().Equal(tt.wantEnd) {
				t.Errorf("fenêtre = [%s, %s], attendu [%s, %s]",
					got.Start().Format("2006-01-02"), got.End().Format("2006-01-02"),
					tt.wantStart.Format("2006-01-02"), tt.wantEnd.Format("2006-01-02"))
			}
		})
	}
}

func TestResolveComparisonUnknownMode(t *testing.T) {
	current := mustRange(t, day(2024, 1, 1), day(2024, 1, 31))

	if _, err := ResolveComparison(current, ComparisonMode("bogus")); err == nil {
		t.Error("un mode inconnu devrait retourner une erreur")
	}
}

func TestParseComparisonMode(t *testing.T) {
	for _, mode := range []string{
		"previous_period", "previous_year", "previous_month", "previous_quarter",
		"dod", "wow", "mom", "qoq_consecutive", "qoq_sequential", "qoq_yoy",
	} {
		if _, err := ParseComparisonMode(mode); err != nil {
			t.Errorf("ParseComparisonMode(%q): %v", mode, err)
		}
	}
	if _, err := ParseComparisonMode("last_week"); err == nil {
		t.Error("ParseComparisonMode devrait rejeter un mode inconnu")
	}
}
