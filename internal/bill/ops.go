package bill

import "errors"

// ErrOutOfRange is returned when an index does not address an existing item,
// so HTTP handlers can respond with 400.
var ErrOutOfRange = errors.New("item index out of range")

// ErrUnknownField is returned when a field name is neither "name" nor "price".
var ErrUnknownField = errors.New("unknown line item field")

// Field names accepted by UpdateField.
const (
	FieldName  = "name"
	FieldPrice = "price"
)

// cloneItems duplicates the slice so callers cannot mutate previously
// returned state.
func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// UpdateField returns a copy of items with just the named field of the item
// at index replaced. The input slice is never modified.
func UpdateField(items []LineItem, index int, field, value string) ([]LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, ErrOutOfRange
	}
	next := cloneItems(items)
	switch field {
	case FieldName:
		next[index].Name = value
	case FieldPrice:
		next[index].Price = value
	default:
		return nil, ErrUnknownField
	}
	return next, nil
}

// AddItem returns a copy of items with a blank zero-priced item appended.
func AddItem(items []LineItem) []LineItem {
	next := cloneItems(items)
	return append(next, LineItem{Name: "", Price: "0.00"})
}

// RemoveItem returns a copy of items without the item at index, preserving
// the relative order of the rest.
func RemoveItem(items []LineItem, index int) ([]LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, ErrOutOfRange
	}
	next := make([]LineItem, 0, len(items)-1)
	next = append(next, items[:index]...)
	next = append(next, items[index+1:]...)
	return next, nil
}
