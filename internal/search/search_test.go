package search

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finitefield.org/elarion-web/internal/catalog"
)

func ids(products []catalog.Product) []int {
	out := make([]int, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterEmptyQueryReturnsCatalog(t *testing.T) {
	all := catalog.Default().Products()
	require.Equal(t, ids(all), ids(Filter(all, "")))
}

func TestFilterCaseInsensitive(t *testing.T) {
	all := catalog.Default().Products()
	cases := map[string][]int{
		"noir":    {1},
		"NOIR":    {1},
		"o":       {1, 3},
		"el":      {2},
		"r":       {1, 2, 3},
		"oud":     {},
		"royal o": {3},
	}
	for q, want := range cases {
		require.Equal(t, want, ids(Filter(all, q)), "query %q", q)
	}
}

func TestFilterPreservesOrderAndOnlyMatches(t *testing.T) {
	products := []catalog.Product{
		{ID: 5, Name: "Amber Crown", Price: decimal.Zero},
		{ID: 2, Name: "Cedar", Price: decimal.Zero},
		{ID: 9, Name: "amber mist", Price: decimal.Zero},
		{ID: 1, Name: "Élixir d'Ambre", Price: decimal.Zero},
	}
	got := Filter(products, "AMB")
	require.Equal(t, []int{5, 9, 1}, ids(got))
	for _, p := range got {
		require.True(t, strings.Contains(strings.ToLower(p.Name), "amb"))
	}
}

func TestFilterFoldsAccents(t *testing.T) {
	products := []catalog.Product{{ID: 1, Name: "Élixir", Price: decimal.Zero}}
	require.Equal(t, []int{1}, ids(Filter(products, "éLI")))
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	all := catalog.Default().Products()
	got := Filter(all, "")
	got[0].Name = "changed"
	require.Equal(t, "Imperial Noir", all[0].Name)
}
