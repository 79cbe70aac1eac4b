package domain

import (
	"errors"
	"fmt"
	"time"
)

// DateRange représente une période temporelle inclusive, à la journée près
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange crée un DateRange borné [start, end] avec validation
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = Midnight(start)
	end = Midnight(end)
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return DateRange{start: start, end: end}, nil
}

// NewDateRangeFromDays crée un DateRange couvrant les N derniers jours
func NewDateRangeFromDays(days int) (DateRange, error) {
	if days < 0 {
		return DateRange{}, errors.New("days cannot be negative")
	}
	now := Midnight(time.Now())
	return DateRange{start: now.AddDate(0, 0, -days), end: now}, nil
}

// Start retourne la date de début
func (dr DateRange) Start() time.Time {
	return dr.start
}

// End retourne la date de fin
func (dr DateRange) End() time.Time {
	return dr.end
}

// Days retourne la durée inclusive en jours
func (dr DateRange) Days() int {
	return int(dr.end.Sub(dr.start).Hours()/24) + 1
}

// Contains vérifie si une date tombe dans la période
func (dr DateRange) Contains(t time.Time) bool {
	d := Midnight(t)
	return !d.Before(dr.start) && !d.After(dr.end)
}

// String formate la période en ISO
func (dr DateRange) String() string {
	return dr.start.Format("2006-01-02") + ".." + dr.end.Format("2006-01-02")
}

// Midnight tronque un instant à minuit UTC (les bornes sont des dates civiles)
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// QuarterOf retourne le trimestre (1-4) d'une date
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// QuarterBounds retourne les bornes civiles d'un trimestre donné
func QuarterBounds(year, quarter int) (time.Time, time.Time) {
	firstMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, firstMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return start, end
}

// MonthBounds retourne les bornes civiles d'un mois donné
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
