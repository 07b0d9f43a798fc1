// Package nav builds the fixed navigation bar shown above the storefront.
package nav

import (
	"finitefield.org/elarion-web/internal/format"
	"finitefield.org/elarion-web/internal/storefront"
)

// Item is an in-page anchor in the bar.
type Item struct {
	Href     string // e.g. "#collection"
	LabelKey string // i18n key, e.g. "nav.collection"
}

// Main lists the in-page anchors.
var Main = []Item{
	{Href: "#collection", LabelKey: "collection.title"},
}

// Bar is the view model for the navigation bar.
type Bar struct {
	Items           []Item
	Scrolled        bool
	Total           string
	ItemCount       int
	CheckoutEnabled bool
	CheckoutOpen    bool
}

// Class returns the style modifier for the bar: translucent with a border
// once scrolled, transparent otherwise.
func (b Bar) Class() string {
	if b.Scrolled {
		return "nav nav--scrolled"
	}
	return "nav"
}

// Build derives the bar from a session snapshot.
func Build(snap storefront.Snapshot) Bar {
	return Bar{
		Items:           Main,
		Scrolled:        snap.State.Scrolled,
		Total:           format.USD(snap.Total),
		ItemCount:       snap.ItemCount,
		CheckoutEnabled: snap.CheckoutEnabled,
		CheckoutOpen:    snap.State.CheckoutOpen,
	}
}
