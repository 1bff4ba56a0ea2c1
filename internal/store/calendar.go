package store

import (
	"database/sql"
	"time"

	"sales-analytics/internal/models"
)

// noCalendar marks a calendar field that is neither stored nor derivable.
// It is outside every period range, so the temporal view rejects the row.
const noCalendar = -1

// calendarColumns holds the precomputed calendar columns of a row. Columns
// left NULL are derived from the invoice date.
type calendarColumns struct {
	year, month, day, dayOfWeek, week sql.NullInt64
}

func (c calendarColumns) apply(tx *models.Transaction) {
	year, month, day, dayOfWeek, week := derive(tx.InvoiceDate)

	tx.Year = pick(c.year, year)
	tx.Month = pick(c.month, month)
	tx.Day = pick(c.day, day)
	tx.DayOfWeek = pick(c.dayOfWeek, dayOfWeek)
	tx.WeekOfYear = pick(c.week, week)
}

func derive(d time.Time) (year, month, day, dayOfWeek, week int) {
	if d.IsZero() {
		return noCalendar, noCalendar, noCalendar, noCalendar, noCalendar
	}
	_, week = d.ISOWeek()
	return d.Year(), int(d.Month()), d.Day(), mondayFirst(d.Weekday()), week
}

func pick(v sql.NullInt64, fallback int) int {
	if v.Valid {
		return int(v.Int64)
	}
	return fallback
}

// mondayFirst numbers weekdays 0 (Monday) through 6 (Sunday).
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}
