package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/models"
)

type productKey struct {
	code, description string
}

type productGroup struct {
	productKey
	total    decimal.Decimal
	quantity int64
}

type categoryGroup struct {
	category string
	total    decimal.Decimal
	quantity int64
}

// Products ranks products and product categories by sales value and
// distributes sales across price categories.
func Products(rows []models.Transaction) (models.ProductAnalysis, error) {
	products := newOrdered[productKey, productGroup]()
	categories := newOrdered[string, categoryGroup]()
	prices := make(map[string]decimal.Decimal)

	for _, tx := range rows {
		v, q := value(tx), quantity(tx)

		key := productKey{code: tx.ProductCode, description: tx.Description}
		p := products.get(key, func() *productGroup { return &productGroup{productKey: key} })
		p.total = p.total.Add(v)
		p.quantity += q

		c := categories.get(tx.ProductCategory, func() *categoryGroup {
			return &categoryGroup{category: tx.ProductCategory}
		})
		c.total = c.total.Add(v)
		c.quantity += q

		prices[tx.PriceCategory] = prices[tx.PriceCategory].Add(v)
	}

	slices.SortStableFunc(products.items, func(a, b *productGroup) int {
		return b.total.Cmp(a.total)
	})
	slices.SortStableFunc(categories.items, func(a, b *categoryGroup) int {
		return b.total.Cmp(a.total)
	})

	view := models.EmptyProductAnalysis()
	for _, p := range products.items[:min(topN, len(products.items))] {
		view.TopProducts = append(view.TopProducts, models.ProductSales{
			Code:          p.code,
			Description:   p.description,
			QuantitySold:  p.quantity,
			TotalValue:    float(p.total),
			TicketAverage: float(ratio(p.total, p.quantity)),
		})
	}
	for _, c := range categories.items {
		view.Categories = append(view.Categories, models.CategorySales{
			Category:      c.category,
			TotalValue:    float(c.total),
			QuantitySold:  c.quantity,
			TicketAverage: float(ratio(c.total, c.quantity)),
		})
	}
	for label, total := range prices {
		view.PriceDistribution[label] = float(total)
	}

	return view, nil
}
