package domain

import "time"

// QuickRange associe un libellé à une période prédéfinie
type QuickRange struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WeekBounds retourne la semaine (lundi-dimanche) contenant la date
func WeekBounds(t time.Time) (time.Time, time.Time) {
	d := Midnight(t)
	// time.Weekday place dimanche à 0, on veut lundi comme premier jour
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// QuickRanges construit les périodes rapides relatives à la date la plus récente du store
func QuickRanges(maxDate time.Time) []QuickRange {
	today := Midnight(maxDate)
	yesterday := today.AddDate(0, 0, -1)

	thisWeekStart, thisWeekEnd := WeekBounds(today)
	lastWeekStart, lastWeekEnd := WeekBounds(today.AddDate(0, 0, -7))
	lastMonthStart, lastMonthEnd := MonthBounds(yearMonthBack(today))
	thisQuarterStart, _ := QuarterBounds(today.Year(), QuarterOf(today))
	lastQuarterYear, lastQuarter := previousQuarter(today.Year(), QuarterOf(today))
	lastQuarterStart, lastQuarterEnd := QuarterBounds(lastQuarterYear, lastQuarter)

	return []QuickRange{
		{Label: "Today", Start: today, End: today},
		{Label: "Yesterday", Start: yesterday, End: yesterday},
		{Label: "Last 7 Days", Start: today.AddDate(0, 0, -6), End: today},
		{Label: "Last 14 Days", Start: today.AddDate(0, 0, -13), End: today},
		{Label: "Last 30 Days", Start: today.AddDate(0, 0, -29), End: today},
		{Label: "Last 90 Days", Start: today.AddDate(0, 0, -89), End: today},
		{Label: "This Week", Start: thisWeekStart, End: thisWeekEnd},
		{Label: "Last Week", Start: lastWeekStart, End: lastWeekEnd},
		{Label: "This Month", Start: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), End: today},
		{Label: "Last Month", Start: lastMonthStart, End: lastMonthEnd},
		{Label: "This Quarter", Start: thisQuarterStart, End: today},
		{Label: "Last Quarter", Start: lastQuarterStart, End: lastQuarterEnd},
		{Label: "This Year", Start: time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), End: today},
		{Label: "Last Year", Start: time.Date(today.Year()-1, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(today.Year()-1, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
}

// yearMonthBack retourne l'année et le mois précédant celui de la date
func yearMonthBack(t time.Time) (int, time.Month) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, 0, -1)
	return prev.Year(), prev.Month()
}
