// Package aggregate computes the report views from transaction rows.
//
// Every function here is pure: it reads the rows it is given and returns a
// freshly built view. Monetary sums are accumulated as decimals and only
// converted to float64 when the view is emitted.
package aggregate

import (
	"github.com/shopspring/decimal"

	"sales-analytics/internal/models"
)

const topN = 10

// ratio divides num by den, returning zero when den is zero.
func ratio(num decimal.Decimal, den int64) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return num.Div(decimal.NewFromInt(den))
}

func float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// value is the row's total invoice value; a missing value counts as zero.
func value(tx models.Transaction) decimal.Decimal {
	if tx.TotalValue.Valid {
		return tx.TotalValue.Decimal
	}
	return decimal.Zero
}

func quantity(tx models.Transaction) int64 {
	if tx.Quantity.Valid {
		return tx.Quantity.Int64
	}
	return 0
}

// ordered groups values by key and remembers the order in which keys were
// first seen, so stable sorts break ties by input order.
type ordered[K comparable, V any] struct {
	index map[K]*V
	items []*V
}

func newOrdered[K comparable, V any]() *ordered[K, V] {
	return &ordered[K, V]{index: make(map[K]*V)}
}

func (o *ordered[K, V]) get(key K, init func() *V) *V {
	if v, ok := o.index[key]; ok {
		return v
	}
	v := init()
	o.index[key] = v
	o.items = append(o.items, v)
	return v
}

type set map[string]struct{}

// add records a non-empty id. Empty ids mirror SQL NULLs and are not counted.
func (s set) add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}
