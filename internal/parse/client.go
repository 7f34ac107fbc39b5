package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"billsplit/internal/bill"
)

// fallbackMessage is shown when the collaborator fails without a usable
// error message of its own.
const fallbackMessage = "Failed to parse the bill image"

// Client talks to the bill parsing collaborator over HTTP. The collaborator
// accepts a multipart image under the field "file" and answers with
// {items, total?} or {error}.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a Client for the given parse endpoint URL.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// parseResponse tolerates a total sent either as a JSON string or a bare
// number, since the collaborator's contract only promises "items".
type parseResponse struct {
	Items []bill.LineItem `json:"items"`
	Total json.RawMessage `json:"total"`
	Error string          `json:"error"`
}

// ParseBill submits a bill image and returns the extracted line items.
func (c *Client) ParseBill(ctx context.Context, filename string, data []byte, contentType string) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing multipart form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var decoded parseResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fallbackMessage
		if decodeErr == nil && decoded.Error != "" {
			message = decoded.Error
		}
		return nil, &ParseError{Message: message}
	}

	// A success status with an undecodable body or no item list is still a
	// parse failure; any other shape must not reach the capture stage.
	if decodeErr != nil || decoded.Items == nil {
		return nil, &ParseError{Message: fallbackMessage}
	}

	return &Result{
		Items: decoded.Items,
		Total: coerceTotal(decoded.Total),
	}, nil
}

// coerceTotal normalizes the optional total field to a string.
func coerceTotal(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
