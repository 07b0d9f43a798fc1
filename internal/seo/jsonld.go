package seo

import (
	"encoding/json"
	"html/template"
)

// JSON marshals v for a <script type="application/ld+json"> block. It returns
// an empty script on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// WebSite returns a WebSite schema whose SearchAction targets the product filter.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// Offer is the price part of a product listing.
type Offer struct {
	Name        string
	Description string
	Image       string
	SKU         string
	Price       string
	Currency    string
}

// Product returns a Product schema with a single in-stock Offer.
func Product(o Offer) map[string]any {
	m := map[string]any{
		"@type":       "Product",
		"name":        o.Name,
		"description": o.Description,
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         o.Price,
			"priceCurrency": o.Currency,
			"availability":  "https://schema.org/InStock",
		},
	}
	if o.Image != "" {
		m["image"] = o.Image
	}
	if o.SKU != "" {
		m["sku"] = o.SKU
	}
	return m
}

// ItemList wraps products in a schema.org ItemList, positions starting at 1.
func ItemList(name string, offers []Offer) map[string]any {
	el := make([]map[string]any, 0, len(offers))
	for i, o := range offers {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     Product(o),
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"name":            name,
		"itemListElement": el,
	}
}
