package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finitefield.org/elarion-web/internal/catalog"
)

func product(t *testing.T, id int) catalog.Product {
	t.Helper()
	p, err := catalog.Default().ByID(id)
	require.NoError(t, err)
	return p
}

func TestEmptyCartTotalsZero(t *testing.T) {
	var c Cart
	require.True(t, c.Empty())
	require.Equal(t, "0.00", c.Total().StringFixed(2))
}

func TestAddKeepsOrderAndDuplicates(t *testing.T) {
	var c Cart
	c.Add(product(t, 3))
	c.Add(product(t, 1))
	c.Add(product(t, 3))

	items := c.Items()
	require.Len(t, items, 3)
	require.Equal(t, []int{3, 1, 3}, []int{items[0].ID, items[1].ID, items[2].ID})
	require.Equal(t, "429.97", c.Total().StringFixed(2))
}

func TestTotalIsExactSum(t *testing.T) {
	var c Cart
	want := decimal.Zero
	for i := 0; i < 25; i++ {
		p := product(t, i%3+1)
		c.Add(p)
		want = want.Add(p.Price)
	}
	require.True(t, c.Total().Equal(want), "got %s want %s", c.Total(), want)
}

func TestClearResetsTotal(t *testing.T) {
	var c Cart
	c.Add(product(t, 1))
	c.Add(product(t, 2))
	c.Clear()

	require.True(t, c.Empty())
	require.Equal(t, "0.00", c.Total().StringFixed(2))
}

func TestCloneIsIndependent(t *testing.T) {
	var c Cart
	c.Add(product(t, 1))
	clone := c.Clone()
	c.Add(product(t, 2))

	require.Equal(t, 1, clone.Len())
	require.Equal(t, 2, c.Len())
}
