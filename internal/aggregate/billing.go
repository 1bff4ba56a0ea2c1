package aggregate

import (
	"fmt"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"sales-analytics/internal/errors"
	"sales-analytics/internal/models"
)

type dailyGroup struct {
	date  civil.Date
	total decimal.Decimal
	count int
}

// Billing reports the mean invoice value, the share of single-line invoices
// and the day by day evolution of billing.
//
// The mean only considers rows that carry a total value.
func Billing(rows []models.Transaction) (models.BillingAnalysis, error) {
	days := newOrdered[civil.Date, dailyGroup]()

	var (
		valued     decimal.Decimal
		valuedRows int64
		singleLine int64
	)

	for i, tx := range rows {
		if tx.InvoiceDate.IsZero() {
			return models.EmptyBillingAnalysis(), fmt.Errorf("row %d (invoice %s): missing invoice date: %w",
				i, tx.InvoiceNumber, errors.ErrMalformedRow)
		}

		if tx.TotalValue.Valid {
			valued = valued.Add(tx.TotalValue.Decimal)
			valuedRows++
		}
		if tx.SingleLine {
			singleLine++
		}

		date := civil.DateOf(tx.InvoiceDate)
		d := days.get(date, func() *dailyGroup { return &dailyGroup{date: date} })
		d.total = d.total.Add(value(tx))
		d.count++
	}

	slices.SortFunc(days.items, func(a, b *dailyGroup) int {
		switch {
		case a.date.Before(b.date):
			return -1
		case b.date.Before(a.date):
			return 1
		}
		return 0
	})

	view := models.EmptyBillingAnalysis()
	view.AverageInvoiceValue = float(ratio(valued, valuedRows))
	view.SingleLineShare = float(ratio(decimal.NewFromInt(singleLine), int64(len(rows))))
	for _, d := range days.items {
		view.Daily = append(view.Daily, models.DailyBilling{
			Date:          d.date,
			TotalValue:    float(d.total),
			Invoices:      d.count,
			TicketAverage: float(ratio(d.total, int64(d.count))),
		})
	}

	return view, nil
}
