package parse

import (
	"context"

	"billsplit/internal/bill"
)

// Result is the structured payload the parsing collaborator returns for a
// bill image. Total is optional; an empty string means the collaborator did
// not report one.
type Result struct {
	Items []bill.LineItem `json:"items"`
	Total string          `json:"total,omitempty"`
}

// Parser defines the interface to the bill parsing collaborator.
type Parser interface {
	// ParseBill submits a bill image and returns the extracted line items.
	ParseBill(ctx context.Context, filename string, data []byte, contentType string) (*Result, error)
}
