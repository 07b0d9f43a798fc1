// Package storefront owns the per-visit session state. Every change is an
// Event applied by Reduce; a Session serialises events on one goroutine.
package storefront

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"finitefield.org/elarion-web/internal/cart"
	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/checkout"
	"finitefield.org/elarion-web/internal/scroll"
	"finitefield.org/elarion-web/internal/search"
)

var (
	// ErrUnknownProduct is returned when an add refers to an id outside the catalog.
	ErrUnknownProduct = errors.New("storefront: unknown product")
	// ErrUnknownField is returned when an edit names an input the form lacks.
	ErrUnknownField = errors.New("storefront: unknown form field")
	// ErrUnknownEvent is returned for event types Reduce does not handle.
	ErrUnknownEvent = errors.New("storefront: unknown event")
)

// State is everything one visit owns.
type State struct {
	Cart         cart.Cart
	Form         checkout.Form
	Scrolled     bool
	IntroVisible bool
	CheckoutOpen bool
	SearchQuery  string
}

// Initial is the state at mount: empty cart, splash showing.
func Initial() State {
	return State{IntroVisible: true}
}

// Env holds the read-only collaborators Reduce consults.
type Env struct {
	Catalog *catalog.Catalog
	Scroll  scroll.Detector
}

// Event is a discrete input to the session.
type Event interface {
	Kind() string
}

// AddToCart appends a catalog product to the cart.
type AddToCart struct{ ProductID int }

// SetQuery replaces the search query.
type SetQuery struct{ Query string }

// Scroll reports the current viewport offset.
type Scroll struct{ Offset float64 }

// IntroElapsed is raised by the splash timer.
type IntroElapsed struct{}

// OpenCheckout shows the checkout form. It is ignored while the cart is empty.
type OpenCheckout struct{}

// CloseCheckout hides the checkout form without touching its fields.
type CloseCheckout struct{}

// EditField sets one checkout input.
type EditField struct {
	Field checkout.Field
	Value string
}

// SubmitCheckout validates and places the demo order. When Form is set it
// replaces the current field values first. It is ignored while checkout is
// closed.
type SubmitCheckout struct{ Form *checkout.Form }

func (AddToCart) Kind() string      { return "add_to_cart" }
func (SetQuery) Kind() string       { return "set_query" }
func (Scroll) Kind() string         { return "scroll" }
func (IntroElapsed) Kind() string   { return "intro_elapsed" }
func (OpenCheckout) Kind() string   { return "open_checkout" }
func (CloseCheckout) Kind() string  { return "close_checkout" }
func (EditField) Kind() string      { return "edit_field" }
func (SubmitCheckout) Kind() string { return "submit_checkout" }

// Outcome describes side results of applying an event.
type Outcome struct {
	// Notice is the user-facing confirmation of a placed order.
	Notice string
	// Err is set when the event was rejected. State is unchanged except
	// for submitted field values.
	Err error
}

// Reduce applies e to s. It never mutates s; the returned State is independent.
func Reduce(env Env, s State, e Event) (State, Outcome) {
	switch ev := e.(type) {
	case AddToCart:
		p, err := env.Catalog.ByID(ev.ProductID)
		if err != nil {
			return s, Outcome{Err: fmt.Errorf("%w: %d", ErrUnknownProduct, ev.ProductID)}
		}
		s.Cart = s.Cart.Clone()
		s.Cart.Add(p)
	case SetQuery:
		s.SearchQuery = ev.Query
	case Scroll:
		s.Scrolled = env.Scroll.Scrolled(ev.Offset)
	case IntroElapsed:
		s.IntroVisible = false
	case OpenCheckout:
		if !s.Cart.Empty() {
			s.CheckoutOpen = true
		}
	case CloseCheckout:
		s.CheckoutOpen = false
	case EditField:
		if _, ok := checkout.ParseField(string(ev.Field)); !ok {
			return s, Outcome{Err: fmt.Errorf("%w: %q", ErrUnknownField, ev.Field)}
		}
		s.Form = s.Form.With(ev.Field, ev.Value)
	case SubmitCheckout:
		if !s.CheckoutOpen {
			return s, Outcome{}
		}
		if ev.Form != nil {
			s.Form = *ev.Form
		}
		c := s.Cart.Clone()
		res, err := checkout.Submit(s.Form, &c)
		if err != nil {
			return s, Outcome{Err: err}
		}
		s.Cart = c
		s.CheckoutOpen = false
		s.Form = checkout.Form{}
		return s, Outcome{Notice: res.Message}
	default:
		return s, Outcome{Err: fmt.Errorf("%w: %T", ErrUnknownEvent, e)}
	}
	return s, Outcome{}
}

// Snapshot is a read-only view of a session with its derived values.
type Snapshot struct {
	SessionID string
	Version   uint64
	State     State

	// Derived from State each time a snapshot is built.
	Total           decimal.Decimal
	ItemCount       int
	CheckoutEnabled bool
	Products        []catalog.Product

	Notice string
	Err    error
}

// NewSnapshot computes the derived values for s.
func NewSnapshot(env Env, id string, version uint64, s State, out Outcome) Snapshot {
	s.Cart = s.Cart.Clone()
	return Snapshot{
		SessionID:       id,
		Version:         version,
		State:           s,
		Total:           s.Cart.Total(),
		ItemCount:       s.Cart.Len(),
		CheckoutEnabled: !s.Cart.Empty(),
		Products:        search.Filter(env.Catalog.Products(), s.SearchQuery),
		Notice:          out.Notice,
		Err:             out.Err,
	}
}
