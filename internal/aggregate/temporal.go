package aggregate

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/errors"
	"sales-analytics/internal/models"
)

type period struct {
	key   int
	total decimal.Decimal
	count int
}

type periodKind struct {
	label    string
	min, max int
	key      func(models.Transaction) int
}

var (
	byMonth     = periodKind{label: "Month", min: 1, max: 12, key: func(tx models.Transaction) int { return tx.Month }}
	byDayOfWeek = periodKind{label: "Day", min: 0, max: 6, key: func(tx models.Transaction) int { return tx.DayOfWeek }}
	byWeek      = periodKind{label: "Week", min: 0, max: 53, key: func(tx models.Transaction) int { return tx.WeekOfYear }}
)

// Temporal groups rows by month, day of week and week of year.
func Temporal(rows []models.Transaction) (models.TemporalAnalysis, error) {
	view := models.EmptyTemporalAnalysis()

	var err error
	if view.ByMonth, err = periodSales(rows, byMonth); err != nil {
		return models.EmptyTemporalAnalysis(), err
	}
	if view.ByDayOfWeek, err = periodSales(rows, byDayOfWeek); err != nil {
		return models.EmptyTemporalAnalysis(), err
	}
	if view.ByWeek, err = periodSales(rows, byWeek); err != nil {
		return models.EmptyTemporalAnalysis(), err
	}
	return view, nil
}

func periodSales(rows []models.Transaction, kind periodKind) ([]models.PeriodSales, error) {
	groups := newOrdered[int, period]()

	for i, tx := range rows {
		key := kind.key(tx)
		if key < kind.min || key > kind.max {
			return nil, fmt.Errorf("row %d (invoice %s): %s %d out of range [%d,%d]: %w",
				i, tx.InvoiceNumber, kind.label, key, kind.min, kind.max, errors.ErrMalformedRow)
		}
		p := groups.get(key, func() *period { return &period{key: key} })
		p.total = p.total.Add(value(tx))
		p.count++
	}

	slices.SortFunc(groups.items, func(a, b *period) int {
		return a.key - b.key
	})

	out := make([]models.PeriodSales, 0, len(groups.items))
	for _, p := range groups.items {
		out = append(out, models.PeriodSales{
			Period:        fmt.Sprintf("%s %d", kind.label, p.key),
			TotalSales:    float(p.total),
			Sales:         p.count,
			TicketAverage: float(ratio(p.total, int64(p.count))),
		})
	}
	return out, nil
}
