package nav

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finitefield.org/elarion-web/internal/storefront"
)

func TestBuildReflectsSnapshot(t *testing.T) {
	snap := storefront.Snapshot{
		Total:           decimal.RequireFromString("279.98"),
		ItemCount:       2,
		CheckoutEnabled: true,
	}
	snap.State.Scrolled = true

	bar := Build(snap)
	require.Equal(t, "$279.98", bar.Total)
	require.Equal(t, 2, bar.ItemCount)
	require.True(t, bar.CheckoutEnabled)
	require.Equal(t, "nav nav--scrolled", bar.Class())
}

func TestEmptyCartDisablesCheckout(t *testing.T) {
	bar := Build(storefront.Snapshot{})
	require.Equal(t, "$0.00", bar.Total)
	require.False(t, bar.CheckoutEnabled)
	require.Equal(t, "nav", bar.Class())
}
