package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/checkout"
	"finitefield.org/elarion-web/internal/seo"
	"finitefield.org/elarion-web/internal/storefront"
)

func TestCardsKeepOrderAndFormatPrices(t *testing.T) {
	cards := Cards(catalog.Default().Products())
	require.Len(t, cards, 3)
	require.Equal(t, "Imperial Noir", cards[0].Name)
	require.Equal(t, "$129.99", cards[0].Price)
	require.NotEmpty(t, cards[0].Summary)
	require.NotEmpty(t, cards[0].Description)
}

func TestBuildCheckoutMarksMissingFields(t *testing.T) {
	snap := storefront.NewSnapshot(storefront.Env{Catalog: catalog.Default()}, "s", 0, storefront.State{
		CheckoutOpen: true,
		Form:         checkout.Form{Name: "Jane Doe"},
	}, storefront.Outcome{})
	_, err := checkout.Submit(snap.State.Form, nil)
	require.Error(t, err)

	view := BuildCheckout(snap, err)
	require.True(t, view.Open)
	require.Equal(t, []string{"email", "address"}, view.Missing)
	require.Len(t, view.Fields, 3)
	require.Equal(t, "Jane Doe", view.Fields[0].Value)
	require.False(t, view.Fields[0].Invalid)
	require.True(t, view.Fields[1].Invalid)
	require.Equal(t, "email", view.Fields[1].Type)
	require.Equal(t, "checkout.address", view.Fields[2].LabelKey)
}

func TestBuildPageFromSession(t *testing.T) {
	s := storefront.NewSession("s", catalog.Default(), storefront.Options{})
	defer s.Close()
	snap, err := s.Dispatch(context.Background(), storefront.AddToCart{ProductID: 3})
	require.NoError(t, err)

	page := BuildPage(snap, "en", "tok", seo.Meta{Title: "Élarion"}, nil)
	require.Equal(t, "Élarion", page.Title)
	require.Equal(t, "$149.99", page.Nav.Total)
	require.True(t, page.Nav.CheckoutEnabled)
	require.True(t, page.Intro.Visible)
	require.Len(t, page.Products, 3)
	require.Empty(t, page.Checkout.Missing)
}

func TestOffersAndHeaders(t *testing.T) {
	offers := Offers(catalog.Default().Products())
	require.Equal(t, "119.99", offers[1].Price)
	require.Equal(t, "2", offers[1].SKU)
	require.Equal(t, `{"X-CSRF-Token":"abc"}`, HXHeaders(`a"bc`))
}
