package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogMatchesCollection(t *testing.T) {
	c := Default()
	require.Equal(t, 3, c.Len())

	products := c.Products()
	names := []string{products[0].Name, products[1].Name, products[2].Name}
	require.Equal(t, []string{"Imperial Noir", "Velvet Elixir", "Royal Obsession"}, names)
	require.True(t, products[0].Price.Equal(decimal.RequireFromString("129.99")))
	require.Equal(t, "Deep oud, black pepper, and smoked vanilla.", products[0].Summary())
	require.Contains(t, string(products[0].DescriptionHTML()), "<p>Deep oud")
}

func TestProductsReturnsCopy(t *testing.T) {
	c := Default()
	first := c.Products()
	first[0].Name = "mutated"

	again, err := c.ByID(1)
	require.NoError(t, err)
	require.Equal(t, "Imperial Noir", again.Name)
}

func TestByIDUnknown(t *testing.T) {
	_, err := Default().ByID(42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	_, err := New([]Product{
		{ID: 1, Name: "A", Price: decimal.NewFromInt(1)},
		{ID: 1, Name: "B", Price: decimal.NewFromInt(2)},
		{ID: 2, Name: " ", Price: decimal.NewFromInt(2)},
		{ID: 3, Name: "C", Price: decimal.NewFromInt(-1)},
		{ID: 0, Name: "D"},
	})
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Len(t, loadErr.Problems, 4)
	require.Contains(t, err.Error(), "duplicate id")
}

func TestDescriptionIsSanitised(t *testing.T) {
	c, err := New([]Product{{
		ID:          7,
		Name:        "Test",
		Price:       decimal.NewFromInt(10),
		Description: "Notes of *iris* <script>alert(1)</script> and [musk](https://example.com).",
	}})
	require.NoError(t, err)
	p, err := c.ByID(7)
	require.NoError(t, err)

	html := string(p.DescriptionHTML())
	require.Contains(t, html, "<em>iris</em>")
	require.NotContains(t, html, "<script")
	require.Contains(t, html, `rel="nofollow"`)
}

func TestSummaryFlattensMarkup(t *testing.T) {
	c, err := New([]Product{{ID: 8, Name: "Test", Price: decimal.Zero, Description: "Notes of *iris* and musk."}})
	require.NoError(t, err)
	p, err := c.ByID(8)
	require.NoError(t, err)
	require.Equal(t, "Notes of iris and musk.", p.Summary())
}

func TestLoadFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := strings.Join([]string{
		"products:",
		"  - id: 10",
		"    name: Amber Crown",
		`    price: "99.50"`,
		"    description: Amber and cedar.",
		"    image: https://example.com/amber.jpg",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	p, err := c.ByID(10)
	require.NoError(t, err)
	require.Equal(t, "99.5", p.Price.String())
}

func TestLoadFileEmptyPathUsesDefault(t *testing.T) {
	c, err := LoadFile("  ")
	require.NoError(t, err)
	require.Same(t, Default(), c)
}

func TestDecodeRejectsBadPrice(t *testing.T) {
	_, err := Decode(strings.NewReader("products:\n  - id: 1\n    name: X\n    price: cheap\n"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Contains(t, loadErr.Problems[0], `"cheap"`)
}
