// Package checkout holds the demo checkout form and its submit rule.
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"finitefield.org/elarion-web/internal/cart"
)

// SuccessMessage is shown once an order has been accepted.
const SuccessMessage = "Order placed successfully! (Demo Mode)"

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldAddress Field = "address"
)

// Fields lists the inputs in display order.
var Fields = []Field{FieldName, FieldEmail, FieldAddress}

// ParseField maps a form key to a Field.
func ParseField(key string) (Field, bool) {
	switch Field(strings.ToLower(strings.TrimSpace(key))) {
	case FieldName:
		return FieldName, true
	case FieldEmail:
		return FieldEmail, true
	case FieldAddress:
		return FieldAddress, true
	}
	return "", false
}

// ErrIncomplete is matched by every *ValidationError.
var ErrIncomplete = errors.New("checkout: form incomplete")

// ValidationError lists the fields left empty.
type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("checkout: missing fields [%s]", strings.Join(names, ", "))
}

// Is lets errors.Is(err, ErrIncomplete) match.
func (e *ValidationError) Is(target error) bool { return target == ErrIncomplete }

// Form is the shipping contact captured at checkout. No format checks apply.
type Form struct {
	Name    string
	Email   string
	Address string
}

// Get returns the value of f.
func (f Form) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldAddress:
		return f.Address
	}
	return ""
}

// With returns a copy of the form with field set to value.
func (f Form) With(field Field, value string) Form {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldAddress:
		f.Address = value
	}
	return f
}

// Validate reports every empty field. Whitespace counts as a value.
func (f Form) Validate() error {
	var missing []Field
	for _, field := range Fields {
		if f.Get(field) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Result is what a successful submit hands back to the view.
type Result struct {
	Message string
	Form    Form
}

// Submit places the demo order. On a validation error nothing changes and
// the caller may retry at once. On success the cart is cleared and the
// caller should close the checkout view and drop the form.
func Submit(form Form, c *cart.Cart) (Result, error) {
	if err := form.Validate(); err != nil {
		return Result{}, err
	}
	if c != nil {
		c.Clear()
	}
	return Result{Message: SuccessMessage}, nil
}
