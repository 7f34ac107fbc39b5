package handoff

import "billsplit/internal/bill"

// Store holds the single bill document the stages hand to each other. There
// is at most one live document: Save unconditionally overwrites, nothing is
// ever deleted, and the discipline is single writer then single reader.
type Store interface {
	// Save persists the document, overwriting any previous one.
	Save(doc bill.Document) error

	// Load retrieves the current document. Absent and malformed content
	// both yield (nil, nil); a stored document that no longer matches the
	// expected shape is treated as if it were never written.
	Load() (*bill.Document, error)

	// Close closes the store.
	Close() error
}
