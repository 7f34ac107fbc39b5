package edit

import (
	"fmt"

	"billsplit/internal/bill"
	"billsplit/internal/handoff"
)

// Session is the edit stage's working copy of the bill. It is seeded from
// the shared store, mutated in memory, and written back on Confirm.
//
// The total shown right after loading is the stored one, verbatim, even when
// it disagrees with the item sum; the first mutation recomputes it and the
// stored value is never consulted again.
type Session struct {
	store handoff.Store

	items  []bill.LineItem
	total  string
	loaded bool
}

// NewSession creates a Session backed by the shared store.
func NewSession(store handoff.Store) *Session {
	return &Session{
		store: store,
		items: []bill.LineItem{},
		total: "0.00",
	}
}

// Load seeds the session from the shared store. An absent or malformed
// document yields the empty state rather than an error: zero items, total
// "0.00", with the UI expected to point the user back to the upload screen.
func (s *Session) Load() error {
	doc, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("loading bill document: %w", err)
	}
	if doc == nil {
		s.items = []bill.LineItem{}
		s.total = "0.00"
		s.loaded = false
		return nil
	}

	s.items = doc.Items
	s.total = doc.Total
	if s.total == "" {
		s.total = "0.00"
	}
	s.loaded = true
	return nil
}

// Empty reports whether the session has no document to edit.
func (s *Session) Empty() bool {
	return !s.loaded
}

// Items returns a copy of the current line items.
func (s *Session) Items() []bill.LineItem {
	out := make([]bill.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Total returns the current total.
func (s *Session) Total() string {
	return s.total
}

// UpdateField replaces one field of one item and recomputes the total.
func (s *Session) UpdateField(index int, field, value string) error {
	next, err := bill.UpdateField(s.items, index, field, value)
	if err != nil {
		return err
	}
	s.apply(next)
	return nil
}

// AddItem appends a blank item and recomputes the total.
func (s *Session) AddItem() {
	s.apply(bill.AddItem(s.items))
}

// RemoveItem drops the item at index and recomputes the total.
func (s *Session) RemoveItem(index int) error {
	next, err := bill.RemoveItem(s.items, index)
	if err != nil {
		return err
	}
	s.apply(next)
	return nil
}

// apply installs the mutated item list. The recomputation is unconditional:
// no stale total is ever observable after a mutation.
func (s *Session) apply(items []bill.LineItem) {
	s.items = items
	s.total = bill.ComputeTotal(items)
}

// Confirm writes the current document back to the shared store, overwriting
// the previous one, and returns it for the downstream split stage. There is
// no validation gate: confirming an empty list hands off {[], "0.00"}.
func (s *Session) Confirm() (bill.Document, error) {
	doc := bill.Document{Items: s.Items(), Total: s.total}
	if err := s.store.Save(doc); err != nil {
		return bill.Document{}, fmt.Errorf("saving bill document: %w", err)
	}
	return doc, nil
}
