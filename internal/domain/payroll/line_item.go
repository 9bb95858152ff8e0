package payroll

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// ParseMode controls how malformed line-item input is treated
type ParseMode string

const (
	// ParseLenient degrades malformed input to an empty list
	ParseLenient ParseMode = "lenient"
	// ParseStrict rejects malformed input
	ParseStrict ParseMode = "strict"
)

// ParseParseMode parses a configured mode, defaulting to lenient
func ParseParseMode(s string) ParseMode {
	if ParseMode(strings.ToLower(strings.TrimSpace(s))) == ParseStrict {
		return ParseStrict
	}
	return ParseLenient
}

// ParseError reports line-item input that could not be decoded
type ParseError struct {
	Mode ParseMode
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed line items: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the caller may continue with an empty list
func (e *ParseError) Recoverable() bool {
	return e.Mode != ParseStrict
}

var errNotAList = errors.New("expected a list of {description, amount}")

// LineItem is a named monetary adjustment
type LineItem struct {
	Description string
	Amount      decimal.Decimal
}

type lineItemJSON struct {
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
}

// MarshalJSON writes the amount as a JSON number
func (li LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(lineItemJSON{
		Description: li.Description,
		Amount:      json.RawMessage(li.Amount.String()),
	})
}

// LineItems is an ordered list of line items
type LineItems []LineItem

// Total sums the amounts of all items
func (items LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

// MarshalJSON always emits a list, never null
func (items LineItems) MarshalJSON() ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]LineItem(items))
}

// Value implements driver.Valuer, storing items as JSON text
func (items LineItems) Value() (driver.Value, error) {
	data, err := items.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (items *LineItems) Scan(value any) error {
	parsed, err := ParseLineItems(value, ParseStrict)
	if err != nil {
		return fmt.Errorf("scan line items: %w", err)
	}
	*items = parsed
	return nil
}

// ParseLineItems normalizes heterogeneous line-item input into a canonical
// list. raw may be a JSON document (string, []byte, json.RawMessage), an
// already structured list, or empty. Amounts are coerced to non-negative
// numbers with invalid or missing values becoming zero.
//
// Malformed input yields an empty list and a *ParseError. In lenient mode
// the error is recoverable and callers are expected to log it and continue.
func ParseLineItems(raw any, mode ParseMode) (LineItems, error) {
	items, err := parseLineItems(raw, 0)
	if err != nil {
		return LineItems{}, &ParseError{Mode: mode, Err: err}
	}
	return items, nil
}

func parseLineItems(raw any, depth int) (LineItems, error) {
	switch v := raw.(type) {
	case nil:
		return LineItems{}, nil
	case LineItems:
		return normalizeItems(v), nil
	case []LineItem:
		return normalizeItems(v), nil
	case string:
		return parseLineItemsJSON([]byte(v), depth)
	case []byte:
		return parseLineItemsJSON(v, depth)
	case json.RawMessage:
		return parseLineItemsJSON(v, depth)
	case []map[string]any:
		items := make(LineItems, 0, len(v))
		for _, m := range v {
			items = append(items, itemFromMap(m))
		}
		return items, nil
	case []any:
		return itemsFromSlice(v), nil
	default:
		return nil, fmt.Errorf("unsupported line item input of type %T", raw)
	}
}

func parseLineItemsJSON(data []byte, depth int) (LineItems, error) {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", "[]", `""`:
		return LineItems{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}

	switch v := decoded.(type) {
	case nil:
		return LineItems{}, nil
	case []any:
		return itemsFromSlice(v), nil
	case string:
		// A JSON string holding a JSON list: decode one more level.
		if depth == 0 {
			return parseLineItems(v, depth+1)
		}
	}
	return nil, errNotAList
}

func itemsFromSlice(values []any) LineItems {
	items := make(LineItems, 0, len(values))
	for _, value := range values {
		switch v := value.(type) {
		case map[string]any:
			items = append(items, itemFromMap(v))
		case LineItem:
			items = append(items, normalizeItem(v))
		}
	}
	return items
}

func itemFromMap(m map[string]any) LineItem {
	var description string
	switch d := m["description"].(type) {
	case nil:
	case string:
		description = d
	default:
		description = fmt.Sprint(d)
	}
	return LineItem{
		Description: strings.TrimSpace(description),
		Amount:      coerceAmount(m["amount"]),
	}
}

func normalizeItems(in []LineItem) LineItems {
	out := make(LineItems, 0, len(in))
	for _, item := range in {
		out = append(out, normalizeItem(item))
	}
	return out
}

func normalizeItem(item LineItem) LineItem {
	item.Description = strings.TrimSpace(item.Description)
	if item.Amount.IsNegative() {
		item.Amount = decimal.Zero
	}
	return item
}

// coerceAmount turns any amount representation into a non-negative decimal
func coerceAmount(v any) decimal.Decimal {
	var d decimal.Decimal
	switch a := v.(type) {
	case decimal.Decimal:
		d = a
	case json.Number:
		parsed, err := decimal.NewFromString(a.String())
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(a))
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case float64:
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat(a)
	case float32:
		return coerceAmount(float64(a))
	case int:
		d = decimal.NewFromInt(int64(a))
	case int64:
		d = decimal.NewFromInt(a)
	case int32:
		d = decimal.NewFromInt(int64(a))
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
