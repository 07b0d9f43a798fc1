// Package handlers holds the view models the storefront templates render.
package handlers

import (
	"errors"
	"html/template"
	"strconv"
	"strings"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/checkout"
	"finitefield.org/elarion-web/internal/format"
	"finitefield.org/elarion-web/internal/nav"
	"finitefield.org/elarion-web/internal/seo"
	"finitefield.org/elarion-web/internal/storefront"
)

// HeroVideo is the looping background of the hero section.
const HeroVideo = "https://cdn.coverr.co/videos/coverr-perfume-bottle-5794/1080p.mp4"

// PageData is the view model for the storefront page and its fragments.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Meta
	CSRFToken string

	Nav nav.Bar
	// SwapNavOOB renders the nav as an out-of-band swap next to another fragment.
	SwapNavOOB bool

	Intro    IntroView
	Hero     string
	Query    string
	Products []ProductCard
	Checkout CheckoutView
	Notice   string
}

// IntroView drives the splash overlay.
type IntroView struct {
	Visible bool
	// PollEvery is the htmx polling interval while the splash shows.
	PollEvery string
}

// ProductCard is one grid entry.
type ProductCard struct {
	ID          int
	Name        string
	Price       string
	Image       string
	Summary     string
	Description template.HTML
}

// CheckoutView is the checkout overlay.
type CheckoutView struct {
	Open    bool
	Total   string
	Fields  []FieldView
	Missing []string
	Notice  string
}

// FieldView is one checkout input.
type FieldView struct {
	Name         string
	LabelKey     string
	Type         string
	Autocomplete string
	Value        string
	Invalid      bool
}

var fieldMeta = map[checkout.Field]struct{ typ, autocomplete string }{
	checkout.FieldName:    {"text", "name"},
	checkout.FieldEmail:   {"email", "email"},
	checkout.FieldAddress: {"text", "street-address"},
}

// Cards converts catalog products to grid entries, keeping their order.
func Cards(products []catalog.Product) []ProductCard {
	out := make([]ProductCard, 0, len(products))
	for _, p := range products {
		out = append(out, ProductCard{
			ID:          p.ID,
			Name:        p.Name,
			Price:       format.USD(p.Price),
			Image:       p.Image,
			Summary:     p.Summary(),
			Description: p.DescriptionHTML(),
		})
	}
	return out
}

// BuildCheckout renders the form state. err is the last submit result; a
// *checkout.ValidationError marks the missing inputs.
func BuildCheckout(snap storefront.Snapshot, err error) CheckoutView {
	missing := map[checkout.Field]bool{}
	view := CheckoutView{
		Open:  snap.State.CheckoutOpen,
		Total: format.USD(snap.Total),
	}
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Missing {
			missing[f] = true
			view.Missing = append(view.Missing, string(f))
		}
	}
	for _, f := range checkout.Fields {
		meta := fieldMeta[f]
		view.Fields = append(view.Fields, FieldView{
			Name:         string(f),
			LabelKey:     "checkout." + string(f),
			Type:         meta.typ,
			Autocomplete: meta.autocomplete,
			Value:        snap.State.Form.Get(f),
			Invalid:      missing[f],
		})
	}
	return view
}

// BuildPage assembles the full page from a snapshot.
func BuildPage(snap storefront.Snapshot, lang, csrf string, meta seo.Meta, submitErr error) PageData {
	return PageData{
		Title:     meta.Title,
		Lang:      lang,
		SEO:       meta,
		CSRFToken: csrf,
		Nav:       nav.Build(snap),
		Intro:     IntroView{Visible: snap.State.IntroVisible, PollEvery: "500ms"},
		Hero:      HeroVideo,
		Query:     snap.State.SearchQuery,
		Products:  Cards(snap.Products),
		Checkout:  BuildCheckout(snap, submitErr),
		Notice:    snap.Notice,
	}
}

// Offers maps products to schema.org offers for the JSON-LD block.
func Offers(products []catalog.Product) []seo.Offer {
	out := make([]seo.Offer, 0, len(products))
	for _, p := range products {
		out = append(out, seo.Offer{
			Name:        p.Name,
			Description: p.Summary(),
			Image:       p.Image,
			SKU:         strconv.Itoa(p.ID),
			Price:       p.Price.StringFixed(2),
			Currency:    "USD",
		})
	}
	return out
}

// HXHeaders is the hx-headers attribute value carrying the CSRF token.
func HXHeaders(token string) string {
	return `{"X-CSRF-Token":"` + strings.ReplaceAll(token, `"`, "") + `"}`
}
