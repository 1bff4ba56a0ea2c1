package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/models"
)

type customerGroup struct {
	id      string
	total   decimal.Decimal
	lines   int
	country string
}

// Customers ranks customers by purchase value and reports how customers are
// spread across countries.
//
// A customer with rows in several countries is reported under the greatest
// country label in byte order.
func Customers(rows []models.Transaction) (models.CustomerAnalysis, error) {
	customers := newOrdered[string, customerGroup]()
	perCountry := make(map[string]set)
	distinct := make(set)

	for _, tx := range rows {
		c := customers.get(tx.CustomerID, func() *customerGroup {
			return &customerGroup{id: tx.CustomerID, country: tx.Country}
		})
		c.total = c.total.Add(value(tx))
		c.lines++
		if tx.Country > c.country {
			c.country = tx.Country
		}

		ids, ok := perCountry[tx.Country]
		if !ok {
			ids = make(set)
			perCountry[tx.Country] = ids
		}
		ids.add(tx.CustomerID)
		distinct.add(tx.CustomerID)
	}

	slices.SortStableFunc(customers.items, func(a, b *customerGroup) int {
		return b.total.Cmp(a.total)
	})

	view := models.EmptyCustomerAnalysis()
	for _, c := range customers.items[:min(topN, len(customers.items))] {
		view.TopCustomers = append(view.TopCustomers, models.CustomerSales{
			CustomerID:     c.id,
			TotalPurchases: float(c.total),
			Frequency:      c.lines,
			TicketAverage:  float(ratio(c.total, int64(c.lines))),
			Country:        c.country,
		})
	}
	for country, ids := range perCountry {
		view.CountryDistribution[country] = len(ids)
	}
	view.PurchasesPerCustomer = float(ratio(decimal.NewFromInt(int64(len(rows))), int64(len(distinct))))

	return view, nil
}
