package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/models"
)

type countryGroup struct {
	country   string
	total     decimal.Decimal
	customers set
}

// SalesByCountry groups rows by country, ranked by total sales descending.
func SalesByCountry(rows []models.Transaction) (models.SalesByCountry, error) {
	groups := newOrdered[string, countryGroup]()

	for _, tx := range rows {
		g := groups.get(tx.Country, func() *countryGroup {
			return &countryGroup{country: tx.Country, customers: make(set)}
		})
		g.total = g.total.Add(value(tx))
		g.customers.add(tx.CustomerID)
	}

	slices.SortStableFunc(groups.items, func(a, b *countryGroup) int {
		return b.total.Cmp(a.total)
	})

	view := models.EmptySalesByCountry()
	for _, g := range groups.items {
		customers := len(g.customers)
		view.Countries = append(view.Countries, models.CountrySales{
			Country:       g.country,
			TotalSales:    float(g.total),
			Customers:     customers,
			TicketAverage: float(ratio(g.total, int64(customers))),
		})
	}
	view.TotalCountries = len(view.Countries)

	return view, nil
}
