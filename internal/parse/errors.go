package parse

import "fmt"

// ParseError means the collaborator answered but could not parse the bill:
// a non-success status, an {error} body, or a response in an unexpected
// shape. Message is the collaborator's own message when it sent one, else a
// generic fallback.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// TransportError means the collaborator could not be reached at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("reaching parse service: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
