// Package search filters catalog products by name.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finitefield.org/elarion-web/internal/catalog"
)

// Filter returns the products whose lower-cased name contains the lower-cased
// query, preserving catalog order. An empty query returns every product.
func Filter(products []catalog.Product, query string) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	if query == "" {
		return append(out, products...)
	}
	lower := cases.Lower(language.Und)
	needle := lower.String(query)
	for _, p := range products {
		if strings.Contains(lower.String(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
