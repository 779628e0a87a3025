package calc

import (
	"errors"
	"fmt"
)

// State is the lifecycle of a document edit session.
type State string

const (
	StateEmpty       State = "EMPTY"
	StateEditing     State = "EDITING"
	StateSubmitting  State = "SUBMITTING"
	StateSaved       State = "SAVED"
	StateSubmitError State = "SUBMIT_ERROR"
	StateCancelled   State = "CANCELLED"
)

var (
	// ErrNoLines blocks submission of a document without line items.
	ErrNoLines = errors.New("document has no line items")
	// ErrNotEditable is returned when a mutation arrives outside an editable state.
	ErrNotEditable = errors.New("session is not editable")
	// ErrLineIndex indicates an out-of-range line index.
	ErrLineIndex = errors.New("line index out of range")
)

// Lookup resolves a catalog item id. A false return means the id is unknown
// (deleted or never existed); the session leaves the line untouched.
type Lookup func(itemID int64) (Item, bool)

// SessionOptions configures a document edit session.
type SessionOptions struct {
	PriceSource          PriceSource
	WithAdjustments      bool
	OverwriteDescription bool
	Lookup               Lookup
}

// Session owns the transient line-item state of one document being edited,
// from open until submit or cancel. Totals stay consistent with the line
// collection after every mutation.
type Session struct {
	opts     SessionOptions
	lines    []Line
	tax      float64
	shipping float64
	totals   Totals
	state    State
}

// NewSession starts an empty edit session.
func NewSession(opts SessionOptions) *Session {
	s := &Session{opts: opts, state: StateEmpty}
	s.recompute()
	return s
}

// State reports the current session state.
func (s *Session) State() State { return s.state }

// Lines returns a copy of the current line collection.
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Totals returns the current derived document totals.
func (s *Session) Totals() Totals { return s.totals }

// AddLine appends an empty line and returns its index.
func (s *Session) AddLine() (int, error) {
	if !s.editable() {
		return 0, ErrNotEditable
	}
	s.lines = append(s.lines, Line{})
	s.recompute()
	return len(s.lines) - 1, nil
}

// RemoveLine deletes the line at index i.
func (s *Session) RemoveLine(i int) error {
	if !s.editable() {
		return ErrNotEditable
	}
	if i < 0 || i >= len(s.lines) {
		return fmt.Errorf("%w: %d", ErrLineIndex, i)
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.recompute()
	return nil
}

// SetQuantity updates a line quantity from raw input text.
func (s *Session) SetQuantity(i int, raw string) error {
	return s.editLine(i, func(l *Line) { l.Quantity = ParseAmount(raw) })
}

// SetUnitPrice updates a line unit price from raw input text.
func (s *Session) SetUnitPrice(i int, raw string) error {
	return s.editLine(i, func(l *Line) { l.UnitPrice = ParseAmount(raw) })
}

// SetDiscount updates a line discount percent from raw input text.
func (s *Session) SetDiscount(i int, raw string) error {
	return s.editLine(i, func(l *Line) { l.DiscountPercent = clampPercent(ParseAmount(raw)) })
}

// SetUnit updates a line unit of measure.
func (s *Session) SetUnit(i int, unit string) error {
	return s.editLine(i, func(l *Line) { l.Unit = unit })
}

// SetDescription updates a line description.
func (s *Session) SetDescription(i int, desc string) error {
	return s.editLine(i, func(l *Line) { l.Description = desc })
}

// SetLine replaces the editable fields of a line wholesale.
func (s *Session) SetLine(i int, line Line) error {
	return s.editLine(i, func(l *Line) { *l = line })
}

// SetItem resolves itemID through the catalog lookup and merges the item
// onto the line. An unknown id leaves the line untouched and reports false;
// it is never an error that aborts the session.
func (s *Session) SetItem(i int, itemID int64) (bool, error) {
	if !s.editable() {
		return false, ErrNotEditable
	}
	if i < 0 || i >= len(s.lines) {
		return false, fmt.Errorf("%w: %d", ErrLineIndex, i)
	}
	if s.opts.Lookup == nil {
		return false, nil
	}
	item, ok := s.opts.Lookup(itemID)
	if !ok {
		return false, nil
	}
	s.lines[i] = ApplyItem(s.lines[i], item, s.opts.PriceSource, ApplyOptions{
		OverwriteDescription: s.opts.OverwriteDescription,
	})
	s.recompute()
	return true, nil
}

// SetAdjustments updates tax and shipping from raw input text. Ignored for
// kinds without those fields.
func (s *Session) SetAdjustments(taxRaw, shippingRaw string) error {
	if !s.editable() {
		return ErrNotEditable
	}
	s.tax = ParseAmount(taxRaw)
	s.shipping = ParseAmount(shippingRaw)
	s.recompute()
	return nil
}

// SetAdjustmentValues updates tax and shipping from already-parsed numbers.
func (s *Session) SetAdjustmentValues(tax, shipping float64) error {
	if !s.editable() {
		return ErrNotEditable
	}
	s.tax = clampNonNegative(tax)
	s.shipping = clampNonNegative(shipping)
	s.recompute()
	return nil
}

// Submit transitions to Submitting. An empty line collection blocks the
// transition before any persistence is attempted. A rejected session may be
// resubmitted as-is.
func (s *Session) Submit() error {
	switch s.state {
	case StateEmpty:
		return ErrNoLines
	case StateEditing, StateSubmitError:
		if len(s.lines) == 0 {
			return ErrNoLines
		}
		s.state = StateSubmitting
		return nil
	}
	return ErrNotEditable
}

// ServerAccept finalises the session after the backend accepted the save.
func (s *Session) ServerAccept() error {
	if s.state != StateSubmitting {
		return fmt.Errorf("accept from state %s", s.state)
	}
	s.state = StateSaved
	return nil
}

// ServerReject returns the session to an editable error state so the user
// can correct and resubmit; line-item state is preserved.
func (s *Session) ServerReject() error {
	if s.state != StateSubmitting {
		return fmt.Errorf("reject from state %s", s.state)
	}
	s.state = StateSubmitError
	return nil
}

// Cancel discards all in-progress edits. Blocked while a submit is in flight.
func (s *Session) Cancel() error {
	if s.state == StateSubmitting {
		return ErrNotEditable
	}
	s.state = StateCancelled
	return nil
}

func (s *Session) editLine(i int, mutate func(*Line)) error {
	if !s.editable() {
		return ErrNotEditable
	}
	if i < 0 || i >= len(s.lines) {
		return fmt.Errorf("%w: %d", ErrLineIndex, i)
	}
	mutate(&s.lines[i])
	s.recompute()
	return nil
}

func (s *Session) editable() bool {
	switch s.state {
	case StateEmpty, StateEditing, StateSubmitError:
		return true
	}
	return false
}

// recompute re-derives every line total and the document totals from the
// full collection, then settles the Empty/Editing state.
func (s *Session) recompute() {
	for i := range s.lines {
		s.lines[i] = Recalc(s.lines[i])
	}
	s.totals = Compute(s.lines, s.tax, s.shipping, s.opts.WithAdjustments)
	switch s.state {
	case StateEmpty, StateEditing, StateSubmitError:
		if len(s.lines) == 0 {
			s.state = StateEmpty
		} else {
			s.state = StateEditing
		}
	}
}
