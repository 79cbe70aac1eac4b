package domain

import (
	"fmt"
	"time"
)

// ComparisonMode identifie la fenêtre de comparaison à calculer
type ComparisonMode string

const (
	ComparePreviousPeriod  ComparisonMode = "previous_period"
	ComparePreviousYear    ComparisonMode = "previous_year"
	ComparePreviousMonth   ComparisonMode = "previous_month"
	ComparePreviousQuarter ComparisonMode = "previous_quarter"
	CompareDayOverDay      ComparisonMode = "dod"
	CompareWeekOverWeek    ComparisonMode = "wow"
	CompareMonthOverMonth  ComparisonMode = "mom"
	CompareQOQConsecutive  ComparisonMode = "qoq_consecutive"
	CompareQOQSequential   ComparisonMode = "qoq_sequential"
	CompareQOQYearOverYear ComparisonMode = "qoq_yoy"
)

// ParseComparisonMode valide un mode reçu de l'extérieur (API, config)
func ParseComparisonMode(s string) (ComparisonMode, error) {
	mode := ComparisonMode(s)
	switch mode {
	case ComparePreviousPeriod, ComparePreviousYear, ComparePreviousMonth,
		ComparePreviousQuarter, CompareDayOverDay, CompareWeekOverWeek,
		CompareMonthOverMonth, CompareQOQConsecutive, CompareQOQSequential,
		CompareQOQYearOverYear:
		return mode, nil
	}
	return "", fmt.Errorf("unknown comparison mode: %q", s)
}

// ResolveComparison calcule la fenêtre de comparaison théorique pour une période.
// La fenêtre retournée n'est PAS bornée aux dates connues du store: ce clamp
// appartient à l'appelant.
func ResolveComparison(current DateRange, mode ComparisonMode) (DateRange, error) {
	start, end := current.Start(), current.End()

	switch mode {
	case ComparePreviousPeriod:
		// Fenêtre immédiatement précédente de même longueur, sans trou
		length := current.Days()
		prevEnd := start.AddDate(0, 0, -1)
		prevStart := prevEnd.AddDate(0, 0, -(length - 1))
		return NewDateRange(prevStart, prevEnd)

	case ComparePreviousYear:
		return NewDateRange(shiftYearBack(start), shiftYearBack(end))

	case ComparePreviousMonth:
		// Mois calendaire précédant le mois de début, non préservateur de longueur
		firstOfMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		prevEnd := firstOfMonth.AddDate(0, 0, -1)
		prevStart, _ := MonthBounds(prevEnd.Year(), prevEnd.Month())
		return NewDateRange(prevStart, prevEnd)

	case ComparePreviousQuarter:
		year, quarter := previousQuarter(start.Year(), QuarterOf(start))
		qs, qe := QuarterBounds(year, quarter)
		return NewDateRange(qs, qe)

	case CompareDayOverDay:
		return NewDateRange(start.AddDate(0, 0, -1), end.AddDate(0, 0, -1))

	case CompareWeekOverWeek:
		return NewDateRange(start.AddDate(0, 0, -7), end.AddDate(0, 0, -7))

	case CompareMonthOverMonth:
		return NewDateRange(shiftMonthBack(start), shiftMonthBack(end))

	case CompareQOQConsecutive:
		year, quarter := previousQuarter(start.Year(), QuarterOf(start))
		qs, qe := QuarterBounds(year, quarter)
		return NewDateRange(qs, qe)

	case CompareQOQSequential:
		year, quarter := nextQuarter(start.Year(), QuarterOf(start))
		qs, qe := QuarterBounds(year, quarter)
		return NewDateRange(qs, qe)

	case CompareQOQYearOverYear:
		qs, qe := QuarterBounds(start.Year()-1, QuarterOf(start))
		return NewDateRange(qs, qe)
	}

	return DateRange{}, fmt.Errorf("unknown comparison mode: %q", mode)
}

// shiftYearBack recule d'un an, avec repli sur le jour 28 pour le 29 février
func shiftYearBack(t time.Time) time.Time {
	year, month, day := t.Year()-1, t.Month(), t.Day()
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// shiftMonthBack recule d'un mois calendaire, jour plafonné à la fin du mois cible
func shiftMonthBack(t time.Time) time.Time {
	year, month := t.Year(), t.Month()-1
	if month < time.January {
		year, month = year-1, time.December
	}
	day := t.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// previousQuarter recule d'un trimestre avec franchissement d'année
func previousQuarter(year, quarter int) (int, int) {
	if quarter == 1 {
		return year - 1, 4
	}
	return year, quarter - 1
}

// nextQuarter avance d'un trimestre avec franchissement d'année
func nextQuarter(year, quarter int) (int, int) {
	if quarter == 4 {
		return year + 1, 1
	}
	return year, quarter + 1
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
