// Package cart models the visitor's ordered selection of catalog products.
package cart

import (
	"github.com/shopspring/decimal"

	"finitefield.org/elarion-web/internal/catalog"
)

// Cart is an append-only sequence of product selections. Adding the same
// product twice yields two entries. The zero value is an empty cart.
type Cart struct {
	items []catalog.Product
}

// Add appends p unconditionally.
func (c *Cart) Add(p catalog.Product) {
	c.items = append(c.items, p)
}

// Clear drops every selection.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns the selections in insertion order.
func (c Cart) Items() []catalog.Product {
	out := make([]catalog.Product, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of entries, duplicates included.
func (c Cart) Len() int { return len(c.items) }

// Empty reports whether nothing has been selected.
func (c Cart) Empty() bool { return len(c.items) == 0 }

// Total sums the prices of every entry. It is recomputed on each call.
func (c Cart) Total() decimal.Decimal {
	return Total(c.items)
}

// Total sums the prices of items; an empty slice totals zero.
func Total(items []catalog.Product) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price)
	}
	return sum
}

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	if len(c.items) == 0 {
		return Cart{}
	}
	return Cart{items: c.Items()}
}
