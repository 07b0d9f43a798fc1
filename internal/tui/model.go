package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/checkout"
	"finitefield.org/elarion-web/internal/format"
	"finitefield.org/elarion-web/internal/i18n"
	"finitefield.org/elarion-web/internal/storefront"
)

// LineHeight converts viewport lines into the pixel offsets the scroll
// threshold is expressed in.
const LineHeight = 20

type focus int

const (
	focusList focus = iota
	focusSearch
	focusCheckout
)

// Options configure a Model.
type Options struct {
	Bundle *i18n.Bundle
	Lang   string
	// GlamourStyle names a glamour standard style ("dark", "notty", ...).
	// Empty selects the style from the terminal background.
	GlamourStyle string
	Styles       *Styles
}

type (
	changedMsg      struct{}
	sessionEndedMsg struct{}
)

// Model drives one storefront session from the keyboard.
type Model struct {
	sess         *storefront.Session
	snap         storefront.Snapshot
	bundle       *i18n.Bundle
	lang         string
	styles       Styles
	glamourStyle string

	changes <-chan struct{}
	stop    func()

	search   textinput.Model
	fields   []textinput.Model
	field    int
	focus    focus
	cursor   int
	viewport viewport.Model

	renderer  *glamour.TermRenderer
	rendered  map[int]string
	offsets   []int
	lineCount int

	width, height int
	status        string
	statusErr     bool
	missing       map[checkout.Field]bool
}

// New binds a model to sess. The caller owns the session and closes it
// after the program exits.
func New(sess *storefront.Session, opts Options) (Model, error) {
	if sess == nil {
		return Model{}, errors.New("tui: session is required")
	}
	if opts.Bundle == nil {
		return Model{}, errors.New("tui: bundle is required")
	}
	lang := opts.Lang
	if !opts.Bundle.IsSupported(lang) {
		lang = opts.Bundle.Fallback()
	}
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = opts.Bundle.T(lang, "search.placeholder")
	search.CharLimit = 64

	fields := make([]textinput.Model, len(checkout.Fields))
	for i, f := range checkout.Fields {
		in := textinput.New()
		in.Prompt = "> "
		in.CharLimit = 256
		in.Placeholder = opts.Bundle.T(lang, "checkout."+string(f))
		fields[i] = in
	}

	changes, stop := sess.Changes()
	m := Model{
		sess:         sess,
		snap:         sess.Snapshot(),
		bundle:       opts.Bundle,
		lang:         lang,
		styles:       styles,
		glamourStyle: opts.GlamourStyle,
		changes:      changes,
		stop:         stop,
		search:       search,
		fields:       fields,
		viewport:     viewport.New(80, 20),
		rendered:     map[int]string{},
		width:        80,
		height:       24,
	}
	m.layout()
	return m, nil
}

// Init starts listening for session changes, including the splash timer.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return sessionEndedMsg{}
		}
		return changedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.renderer = nil
		m.rendered = map[int]string{}
		m.layout()
		return m, nil

	case changedMsg:
		m.refresh(m.sess.Snapshot())
		return m, waitForChange(m.changes)

	case sessionEndedMsg:
		return m, tea.Quit

	case tea.MouseMsg:
		if m.snap.State.IntroVisible || m.focus == focusCheckout {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.scrollBy(3)
		case tea.MouseButtonWheelUp:
			m.scrollBy(-3)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.stop()
			return m, tea.Quit
		}
		// The splash swallows input until it is dismissed.
		if m.snap.State.IntroVisible {
			return m, nil
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusCheckout:
			return m.updateCheckout(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.stop()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.layout()
			m.follow()
		}
	case "down", "j":
		if m.cursor < len(m.snap.Products)-1 {
			m.cursor++
			m.layout()
			m.follow()
		}
	case "enter":
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.dispatch(storefront.AddToCart{ProductID: p.ID}); err != nil {
			m.fail(err.Error())
			return m, nil
		}
		m.notify("+ " + p.Name + "  " + format.USD(p.Price))
	case "/":
		m.focus = focusSearch
		return m, m.search.Focus()
	case "c":
		if !m.snap.CheckoutEnabled {
			return m, nil
		}
		if err := m.dispatch(storefront.OpenCheckout{}); err != nil {
			m.fail(err.Error())
			return m, nil
		}
		for i, f := range checkout.Fields {
			m.fields[i].SetValue(m.snap.State.Form.Get(f))
		}
		m.focus = focusCheckout
		return m, m.focusField(0)
	case "pgdown", " ":
		m.scrollBy(m.viewport.Height)
	case "pgup":
		m.scrollBy(-m.viewport.Height)
	case "home":
		m.setOffset(0)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.search.Blur()
		m.focus = focusList
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != before {
		m.cursor = 0
		if err := m.dispatch(storefront.SetQuery{Query: q}); err != nil {
			m.fail(err.Error())
		}
		m.setOffset(0)
	}
	return m, cmd
}

func (m Model) updateCheckout(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if err := m.dispatch(storefront.CloseCheckout{}); err != nil {
			m.fail(err.Error())
		}
		m.blurFields()
		m.focus = focusList
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.focusField((m.field + 1) % len(m.fields))
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.focusField((m.field + len(m.fields) - 1) % len(m.fields))
	case tea.KeyEnter:
		return m.submit()
	}
	before := m.fields[m.field].Value()
	var cmd tea.Cmd
	m.fields[m.field], cmd = m.fields[m.field].Update(msg)
	if v := m.fields[m.field].Value(); v != before {
		field := checkout.Fields[m.field]
		if err := m.dispatch(storefront.EditField{Field: field, Value: v}); err != nil {
			m.fail(err.Error())
		}
		if m.missing[field] && v != "" {
			m.missing = without(m.missing, field)
		}
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	form := checkout.Form{
		Name:    m.fields[0].Value(),
		Email:   m.fields[1].Value(),
		Address: m.fields[2].Value(),
	}
	err := m.dispatch(storefront.SubmitCheckout{Form: &form})
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		m.missing = make(map[checkout.Field]bool, len(verr.Missing))
		labels := make([]string, len(verr.Missing))
		for i, f := range verr.Missing {
			m.missing[f] = true
			labels[i] = m.bundle.T(m.lang, "checkout."+string(f))
		}
		m.fail(m.bundle.Tf(m.lang, "checkout.missing", strings.Join(labels, ", ")))
		for i, f := range checkout.Fields {
			if m.missing[f] {
				return m, m.focusField(i)
			}
		}
		return m, nil
	case err != nil:
		m.fail(err.Error())
		return m, nil
	}
	m.missing = nil
	for i := range m.fields {
		m.fields[i].SetValue("")
	}
	m.blurFields()
	m.focus = focusList
	m.notify(m.bundle.T(m.lang, "checkout.placed"))
	return m, nil
}

// dispatch applies e to the session and adopts the resulting snapshot.
func (m *Model) dispatch(e storefront.Event) error {
	snap, err := m.sess.Dispatch(context.Background(), e)
	if errors.Is(err, storefront.ErrSessionClosed) {
		return err
	}
	m.refresh(snap)
	return err
}

func (m *Model) refresh(snap storefront.Snapshot) {
	m.snap = snap
	if m.cursor >= len(snap.Products) {
		m.cursor = max(len(snap.Products)-1, 0)
	}
	if !snap.State.CheckoutOpen && m.focus == focusCheckout {
		m.blurFields()
		m.focus = focusList
	}
	m.layout()
}

func (m *Model) notify(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) fail(s string) {
	m.status, m.statusErr = s, true
}

func (m *Model) focusField(i int) tea.Cmd {
	m.blurFields()
	m.field = i
	return m.fields[i].Focus()
}

func (m *Model) blurFields() {
	for i := range m.fields {
		m.fields[i].Blur()
	}
}

func without(set map[checkout.Field]bool, f checkout.Field) map[checkout.Field]bool {
	out := make(map[checkout.Field]bool, len(set))
	for k, v := range set {
		if k != f {
			out[k] = v
		}
	}
	return out
}

func (m Model) selected() (catalog.Product, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Products) {
		return catalog.Product{}, false
	}
	return m.snap.Products[m.cursor], true
}

func (m *Model) scrollBy(lines int) {
	m.setOffset(m.viewport.YOffset + lines)
}

// setOffset moves the viewport and reports the new offset to the session.
func (m *Model) setOffset(y int) {
	before := m.viewport.YOffset
	m.viewport.SetYOffset(y)
	if m.viewport.YOffset == before {
		return
	}
	snap, err := m.sess.Scroll(float64(m.viewport.YOffset * LineHeight))
	if err != nil {
		return
	}
	m.refresh(snap)
}

// follow keeps the product under the cursor inside the viewport.
func (m *Model) follow() {
	if m.cursor >= len(m.offsets) {
		return
	}
	top := m.offsets[m.cursor]
	bottom := m.lineCount
	if m.cursor+1 < len(m.offsets) {
		bottom = m.offsets[m.cursor+1]
	}
	switch {
	case top < m.viewport.YOffset:
		m.setOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.setOffset(bottom - m.viewport.Height)
	}
}

// layout sizes the viewport around the fixed chrome and refills it.
func (m *Model) layout() {
	chrome := lipgloss.Height(m.navView()) + lipgloss.Height(m.searchView()) + 2
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 1)
	m.viewport.SetContent(m.listContent())
}

func (m *Model) listContent() string {
	products := m.snap.Products
	if len(products) == 0 {
		m.offsets, m.lineCount = nil, 1
		return m.styles.Empty.Render(m.bundle.Tf(m.lang, "search.empty", m.snap.State.SearchQuery))
	}
	var b strings.Builder
	offsets := make([]int, 0, len(products))
	line := 0
	for i, p := range products {
		offsets = append(offsets, line)
		marker, name := "  ", m.styles.Name
		if i == m.cursor {
			marker, name = "> ", m.styles.Selected
		}
		block := marker + name.Render(p.Name) + "  " + m.styles.Price.Render(format.USD(p.Price)) + "\n" +
			m.describe(p) + "\n\n"
		b.WriteString(block)
		line += strings.Count(block, "\n")
	}
	m.offsets, m.lineCount = offsets, line
	return strings.TrimRight(b.String(), "\n")
}

// describe renders a product description as terminal markdown, falling
// back to its plain summary.
func (m *Model) describe(p catalog.Product) string {
	if s, ok := m.rendered[p.ID]; ok {
		return s
	}
	out := p.Summary()
	if r := m.markdown(); r != nil {
		if s, err := r.Render(p.Description); err == nil {
			out = strings.Trim(s, "\n")
		}
	}
	m.rendered[p.ID] = out
	return out
}

func (m *Model) markdown() *glamour.TermRenderer {
	if m.renderer != nil {
		return m.renderer
	}
	style := glamour.WithAutoStyle()
	if m.glamourStyle != "" {
		style = glamour.WithStandardStyle(m.glamourStyle)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(max(m.width-4, 20)))
	if err != nil {
		return nil
	}
	m.renderer = r
	return r
}

func (m Model) View() string {
	if m.snap.State.IntroVisible {
		return m.splashView()
	}
	body := m.viewport.View()
	if m.snap.State.CheckoutOpen {
		body = m.checkoutView()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.navView(),
		m.searchView(),
		body,
		m.statusView(),
		m.helpView(),
	)
}

func (m Model) splashView() string {
	mark := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.SplashMark.Render(m.bundle.T(m.lang, "brand")),
		m.styles.Splash.Render(m.bundle.T(m.lang, "hero.tagline")),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, mark)
}

func (m Model) navView() string {
	checkoutLabel := "[c] " + m.bundle.T(m.lang, "nav.checkout")
	if !m.snap.CheckoutEnabled {
		checkoutLabel = m.styles.Disabled.Render(checkoutLabel)
	}
	line := strings.Join([]string{
		m.styles.Brand.Render(m.bundle.T(m.lang, "brand")),
		m.bundle.Tf(m.lang, "nav.items", m.snap.ItemCount),
		m.styles.Total.Render(format.USD(m.snap.Total)),
		checkoutLabel,
	}, "   ")
	style := m.styles.Nav
	if m.snap.State.Scrolled {
		style = m.styles.NavScrolled
	}
	return style.Width(m.width).Render(line)
}

func (m Model) searchView() string {
	return m.styles.Search.Render(m.search.View())
}

func (m Model) checkoutView() string {
	var b strings.Builder
	b.WriteString(m.styles.Brand.Render(m.bundle.T(m.lang, "checkout.title")))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Label.Render(m.bundle.T(m.lang, "checkout.total")) + " " +
		m.styles.Total.Render(format.USD(m.snap.Total)))
	b.WriteString("\n\n")
	for i, f := range checkout.Fields {
		label := m.styles.Label
		if m.missing[f] {
			label = m.styles.Invalid
		}
		b.WriteString(label.Render(m.bundle.T(m.lang, "checkout."+string(f))))
		b.WriteString("\n")
		b.WriteString(m.fields[i].View())
		b.WriteString("\n\n")
	}
	b.WriteString(m.styles.Help.Render("tab  enter " + m.bundle.T(m.lang, "checkout.submit") +
		"  esc " + m.bundle.T(m.lang, "checkout.close")))
	return m.styles.Panel.Render(b.String())
}

func (m Model) statusView() string {
	if m.statusErr {
		return m.styles.Error.Render(m.status)
	}
	return m.styles.Status.Render(m.status)
}

func (m Model) helpView() string {
	switch m.focus {
	case focusSearch:
		return m.styles.Help.Render("enter/esc  " + m.bundle.T(m.lang, "collection.title"))
	case focusCheckout:
		return ""
	}
	return m.styles.Help.Render("up/down  enter " + m.bundle.T(m.lang, "product.add") +
		"  / " + m.bundle.T(m.lang, "search.label") + "  c " + m.bundle.T(m.lang, "nav.checkout") + "  q")
}
