package bill

// LineItem is one named, priced entry on a bill.
//
// Price stays a string because it doubles as an edit buffer: the edit screen
// binds it to a text field and partially-typed or noisy values ("Rs 12.0")
// must survive a round trip without crashing anything. SanitizePrice is the
// numeric view of the same value.
type LineItem struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Document is the ordered list of line items plus its formatted total. It is
// the unit of handoff between the capture and edit stages.
type Document struct {
	Items []LineItem `json:"items"`
	Total string     `json:"total"`
}

// Normalize builds a Document from a freshly parsed result. A reported total
// is trusted verbatim even when it disagrees with the item sum; the first
// edit recomputes and the discrepancy disappears. A missing total is computed
// from the items.
func Normalize(items []LineItem, total string) Document {
	if items == nil {
		items = []LineItem{}
	}
	if total == "" {
		total = ComputeTotal(items)
	}
	return Document{Items: items, Total: total}
}
