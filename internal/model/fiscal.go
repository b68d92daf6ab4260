package model

import "time"

// FiscalPeriod is the year/month/quarter bucket a transaction date falls in.
type FiscalPeriod struct {
	Year    int
	Month   int
	Quarter int
}

// FiscalPeriodOf derives the fiscal bucket from a calendar date.
// Fiscal years follow the calendar year.
func FiscalPeriodOf(date time.Time) FiscalPeriod {
	return FiscalPeriod{
		Year:    date.Year(),
		Month:   int(date.Month()),
		Quarter: (int(date.Month())-1)/3 + 1,
	}
}
