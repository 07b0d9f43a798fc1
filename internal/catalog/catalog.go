// Package catalog holds the immutable product list offered by the storefront.
package catalog

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product id is not part of the catalog.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a single purchasable fragrance. Values are never mutated after load.
type Product struct {
	ID          int
	Name        string
	Price       decimal.Decimal
	Description string
	Image       string

	descriptionHTML template.HTML
	summary         string
}

// DescriptionHTML returns the sanitised HTML rendering of the markdown description.
func (p Product) DescriptionHTML() template.HTML {
	if p.descriptionHTML == "" && p.Description != "" {
		return template.HTML(template.HTMLEscapeString(p.Description))
	}
	return p.descriptionHTML
}

// Summary returns the description reduced to plain text.
func (p Product) Summary() string {
	if p.summary == "" {
		return strings.TrimSpace(p.Description)
	}
	return p.summary
}

// Catalog is a fixed, ordered set of products keyed by id.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// LoadError lists every problem found while validating catalog entries.
type LoadError struct {
	Problems []string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog: invalid entries [%s]", strings.Join(e.Problems, "; "))
}

// New validates products and builds a catalog preserving their order.
func New(products []Product) (*Catalog, error) {
	var problems []string
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for i, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		p.Image = strings.TrimSpace(p.Image)
		switch {
		case p.ID <= 0:
			problems = append(problems, fmt.Sprintf("entry %d: id must be positive", i))
			continue
		case p.Name == "":
			problems = append(problems, fmt.Sprintf("product %d: name is required", p.ID))
			continue
		case p.Price.IsNegative():
			problems = append(problems, fmt.Sprintf("product %d: price must not be negative", p.ID))
			continue
		}
		if _, dup := c.byID[p.ID]; dup {
			problems = append(problems, fmt.Sprintf("product %d: duplicate id", p.ID))
			continue
		}
		rendered, err := renderDescription(p.Description)
		if err != nil {
			problems = append(problems, fmt.Sprintf("product %d: description: %v", p.ID, err))
			continue
		}
		p.descriptionHTML = rendered
		p.summary = plainText(string(rendered))
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	if len(problems) > 0 {
		return nil, &LoadError{Problems: problems}
	}
	return c, nil
}

// Products returns a copy of the catalog in its original order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByID looks up a product by its stable id.
func (c *Catalog) ByID(id int) (Product, error) {
	if c == nil {
		return Product{}, ErrNotFound
	}
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return c.products[idx], nil
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}
