// Package seo builds head metadata and schema.org payloads for the storefront page.
package seo

import (
	"html/template"
	"net/url"
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

type Twitter struct {
	Card  string
	Image string
}

// Alternate is one hreflang link.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []template.JS
}

// PageMeta assembles the head for the storefront page. baseURL may be empty,
// in which case canonical and alternate links are relative.
func PageMeta(baseURL, title, description, image string, langs []string) Meta {
	canonical := absolute(baseURL, "/")
	m := Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		Robots:      "index,follow",
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       image,
			Type:        "website",
			URL:         canonical,
			SiteName:    "Élarion",
		},
		Twitter: Twitter{Card: "summary_large_image", Image: image},
	}
	for _, l := range langs {
		m.Alternates = append(m.Alternates, Alternate{
			Href:     absolute(baseURL, "/?hl="+url.QueryEscape(l)),
			Hreflang: l,
		})
	}
	return m
}

func absolute(baseURL, path string) string {
	if baseURL == "" {
		return path
	}
	return strings.TrimRight(baseURL, "/") + path
}
