package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"billsplit/internal/bill"
	"billsplit/internal/handoff"
	"billsplit/internal/parse"
)

// State is the upload stage's position in its lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateUploading    State = "uploading"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

var (
	// ErrInvalidFileType is returned when the selected file's declared
	// media type is not an image type.
	ErrInvalidFileType = errors.New("please select a valid image file")

	// ErrNoFileSelected is returned when an upload is attempted with no
	// file selected.
	ErrNoFileSelected = errors.New("please select a file first")

	// ErrUploadInProgress is returned when a submission arrives while a
	// previous upload is still in flight.
	ErrUploadInProgress = errors.New("an upload is already in progress")
)

// Flow drives a single bill through select, upload, parse, and handoff. On a
// successful parse the normalized document is written to the shared store
// and the edit stage takes over from there.
//
// At most one upload is in flight at a time; a second submission is rejected
// rather than queued. Cancelling the context mid-flight returns the flow to
// idle and the late parse result is discarded.
type Flow struct {
	parser parse.Parser
	store  handoff.Store

	mu          sync.Mutex
	state       State
	failure     error
	filename    string
	contentType string
	data        []byte
	generation  int
}

// NewFlow creates a Flow in the idle state.
func NewFlow(parser parse.Parser, store handoff.Store) *Flow {
	return &Flow{
		parser: parser,
		store:  store,
		state:  StateIdle,
	}
}

// Select records a picked or dropped file. A file whose declared media type
// does not begin with "image/" is rejected: the selection is cleared, the
// failure is retained for display, and the flow returns to idle.
func (f *Flow) Select(filename, contentType string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateUploading {
		return ErrUploadInProgress
	}

	if !strings.HasPrefix(contentType, "image/") {
		f.filename = ""
		f.contentType = ""
		f.data = nil
		f.state = StateIdle
		f.failure = ErrInvalidFileType
		return ErrInvalidFileType
	}

	f.filename = filename
	f.contentType = contentType
	f.data = data
	f.state = StateFileSelected
	f.failure = nil
	return nil
}

// Clear drops the current selection and any displayed failure.
func (f *Flow) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateUploading {
		return
	}
	f.filename = ""
	f.contentType = ""
	f.data = nil
	f.state = StateIdle
	f.failure = nil
}

// Upload submits the selected file to the parsing collaborator and, on
// success, persists the normalized document to the shared store. On failure
// the store is left untouched and the reason is retained for display.
func (f *Flow) Upload(ctx context.Context) (*bill.Document, error) {
	f.mu.Lock()
	if f.state == StateUploading {
		f.mu.Unlock()
		return nil, ErrUploadInProgress
	}
	if f.data == nil {
		failure := ErrNoFileSelected
		f.failure = failure
		f.mu.Unlock()
		return nil, failure
	}

	f.state = StateUploading
	f.failure = nil
	f.generation++
	gen := f.generation
	filename, contentType, data := f.filename, f.contentType, f.data
	f.mu.Unlock()

	result, err := f.parser.ParseBill(ctx, filename, data, contentType)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		// Cancelled while in flight; the result no longer applies.
		return nil, context.Canceled
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			f.state = StateIdle
			return nil, err
		}
		slog.Error("Failed to parse bill", "filename", filename, "error", err)
		f.state = StateFailed
		f.failure = err
		return nil, err
	}

	doc := bill.Normalize(result.Items, result.Total)
	if err := f.store.Save(doc); err != nil {
		saveErr := fmt.Errorf("saving bill document: %w", err)
		slog.Error("Failed to save bill document", "error", err)
		f.state = StateFailed
		f.failure = saveErr
		return nil, saveErr
	}

	f.state = StateSucceeded
	return &doc, nil
}

// Cancel abandons an in-flight upload. The flow returns to idle and the
// parse result, if it arrives later, does not apply.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateUploading {
		return
	}
	f.generation++
	f.filename = ""
	f.contentType = ""
	f.data = nil
	f.state = StateIdle
}

// State reports the flow's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err reports the failure to display, if any. Selection errors and upload
// failures land here; a successful select or upload clears it.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}
