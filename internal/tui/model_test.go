package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/checkout"
	"finitefield.org/elarion-web/internal/i18n"
	"finitefield.org/elarion-web/internal/intro"
	"finitefield.org/elarion-web/internal/intro/introtest"
	"finitefield.org/elarion-web/internal/storefront"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestModel(t *testing.T, height int) (Model, *storefront.Session, *introtest.Clock) {
	t.Helper()
	clock := &introtest.Clock{}
	sess := storefront.NewSession("tui-test", catalog.Default(), storefront.Options{Clock: clock})
	t.Cleanup(sess.Close)

	bundle, err := i18n.Load("", "en", []string{"en", "fr"})
	require.NoError(t, err)
	m, err := New(sess, Options{Bundle: bundle, Lang: "en", GlamourStyle: "notty"})
	require.NoError(t, err)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: height})
	return m, sess, clock
}

// ready dismisses the splash the way the running program would.
func ready(t *testing.T, m Model, clock *introtest.Clock) Model {
	t.Helper()
	clock.Advance(intro.DefaultDelay)
	return update(t, m, changedMsg{})
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestNewRequiresBundle(t *testing.T) {
	sess := storefront.NewSession("x", catalog.Default(), storefront.Options{Clock: &introtest.Clock{}})
	defer sess.Close()

	_, err := New(sess, Options{})
	require.Error(t, err)
	_, err = New(nil, Options{})
	require.Error(t, err)
}

func TestSplashUntilIntroElapses(t *testing.T) {
	m, _, clock := newTestModel(t, 24)
	cmd := m.Init()
	require.NotNil(t, cmd)

	view := m.View()
	require.Contains(t, view, "ÉLARION")
	require.Contains(t, view, "POWER • ELEGANCE • LEGACY")
	require.NotContains(t, view, "Imperial Noir")

	m = update(t, m, key(tea.KeyDown), key(tea.KeyEnter))
	require.Zero(t, m.snap.ItemCount, "keys are ignored behind the splash")

	clock.Advance(intro.DefaultDelay - time.Millisecond)
	require.True(t, m.sess.IntroVisible())
	clock.Advance(time.Millisecond)
	require.IsType(t, changedMsg{}, cmd())

	m = update(t, m, changedMsg{})
	require.False(t, m.snap.State.IntroVisible)
	require.Contains(t, m.View(), "Imperial Noir")
}

func TestEnterAddsSelectedProduct(t *testing.T) {
	m, _, clock := newTestModel(t, 40)
	m = ready(t, m, clock)

	m = update(t, m, key(tea.KeyDown), key(tea.KeyEnter))
	require.Equal(t, 1, m.snap.ItemCount)
	require.Equal(t, "119.99", m.snap.Total.StringFixed(2))
	require.Contains(t, m.status, "Velvet Elixir")
	require.Contains(t, m.View(), "$119.99")

	m = update(t, m, key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyEnter))
	require.Equal(t, 2, m.cursor, "cursor stops at the last product")
	require.Equal(t, "269.98", m.snap.Total.StringFixed(2))
}

func TestCheckoutKeyNeedsItems(t *testing.T) {
	m, _, clock := newTestModel(t, 40)
	m = ready(t, m, clock)

	m = update(t, m, runes("c"))
	require.Equal(t, focusList, m.focus)
	require.False(t, m.snap.State.CheckoutOpen)
}

func TestCheckoutFlow(t *testing.T) {
	m, sess, clock := newTestModel(t, 40)
	m = ready(t, m, clock)

	m = update(t, m, key(tea.KeyEnter), key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyEnter))
	require.Equal(t, "279.98", m.snap.Total.StringFixed(2))

	m = update(t, m, runes("c"))
	require.Equal(t, focusCheckout, m.focus)
	require.True(t, m.snap.State.CheckoutOpen)
	require.Contains(t, m.View(), "Order total")
	require.Contains(t, m.View(), "$279.98")

	m = update(t, m, runes("Jane Doe"))
	require.Equal(t, "Jane Doe", sess.Snapshot().State.Form.Name)

	m = update(t, m, key(tea.KeyEnter))
	require.True(t, m.statusErr)
	require.Equal(t, "Please complete: Email, Shipping address", m.status)
	require.True(t, m.missing[checkout.FieldEmail])
	require.True(t, m.missing[checkout.FieldAddress])
	require.Equal(t, 1, m.field, "focus jumps to the first missing field")
	require.Equal(t, 2, m.snap.ItemCount)

	m = update(t, m, runes("jane@example.com"))
	require.False(t, m.missing[checkout.FieldEmail])
	m = update(t, m, key(tea.KeyTab), runes("1 Main St"), key(tea.KeyEnter))

	require.False(t, m.statusErr)
	require.Equal(t, "Order placed successfully! (Demo Mode)", m.status)
	require.Equal(t, focusList, m.focus)
	require.Zero(t, m.snap.ItemCount)
	require.False(t, m.snap.State.CheckoutOpen)
	for _, f := range m.fields {
		require.Empty(t, f.Value())
	}
	require.Contains(t, m.View(), "$0.00")
}

func TestWhitespaceClearsMissingHighlight(t *testing.T) {
	m, _, clock := newTestModel(t, 40)
	m = ready(t, m, clock)

	m = update(t, m, key(tea.KeyEnter), runes("c"), runes("Jane Doe"), key(tea.KeyEnter))
	require.True(t, m.missing[checkout.FieldEmail])

	m = update(t, m, runes(" "))
	require.False(t, m.missing[checkout.FieldEmail], "a space is a value")
	m = update(t, m, key(tea.KeyTab), runes(" "), key(tea.KeyEnter))
	require.False(t, m.statusErr)
	require.Zero(t, m.snap.ItemCount)
}

func TestCheckoutEscapeCloses(t *testing.T) {
	m, _, clock := newTestModel(t, 40)
	m = ready(t, m, clock)

	m = update(t, m, key(tea.KeyEnter), runes("c"), key(tea.KeyShiftTab))
	require.Equal(t, 2, m.field)

	m = update(t, m, key(tea.KeyEsc))
	require.Equal(t, focusList, m.focus)
	require.False(t, m.snap.State.CheckoutOpen)
	require.Equal(t, 1, m.snap.ItemCount)
}

func TestSearchFiltersList(t *testing.T) {
	m, _, clock := newTestModel(t, 40)
	m = ready(t, m, clock)

	m = update(t, m, runes("/"))
	require.Equal(t, focusSearch, m.focus)

	m = update(t, m, runes("noir"))
	require.Len(t, m.snap.Products, 1)
	require.Equal(t, "Imperial Noir", m.snap.Products[0].Name)

	m = update(t, m, key(tea.KeyBackspace), key(tea.KeyBackspace), key(tea.KeyBackspace), key(tea.KeyBackspace), runes("zzz"))
	require.Empty(t, m.snap.Products)
	require.Contains(t, m.View(), `No fragrance matches "zzz".`)

	m = update(t, m, key(tea.KeyEsc), key(tea.KeyEnter))
	require.Equal(t, focusList, m.focus)
	require.Zero(t, m.snap.ItemCount, "nothing to add from an empty result")
}

func TestViewportOffsetFeedsScroll(t *testing.T) {
	m, _, clock := newTestModel(t, 10)
	m = ready(t, m, clock)
	require.False(t, m.snap.State.Scrolled)

	m = update(t, m, key(tea.KeyPgDown))
	require.Greater(t, m.viewport.YOffset*LineHeight, 50)
	require.True(t, m.snap.State.Scrolled)

	m = update(t, m, key(tea.KeyHome))
	require.Zero(t, m.viewport.YOffset)
	require.False(t, m.snap.State.Scrolled)
}

func TestSessionEndQuits(t *testing.T) {
	m, sess, _ := newTestModel(t, 24)
	sess.Close()

	msg := waitForChange(m.changes)()
	require.IsType(t, sessionEndedMsg{}, msg)

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
