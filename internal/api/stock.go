package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StockLevel is the JSON value the depot returns for a stock query. The
// server usually sends a bare integer but any JSON value is accepted.
type StockLevel struct {
	raw   json.RawMessage
	value interface{}
}

// ParseStockLevel decodes body as a single JSON value.
func ParseStockLevel(body []byte) (StockLevel, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return StockLevel{}, fmt.Errorf("parse stock json: %w", err)
	}
	if dec.More() {
		return StockLevel{}, fmt.Errorf("parse stock json: trailing data after value")
	}
	return StockLevel{raw: json.RawMessage(bytes.TrimSpace(body)), value: v}, nil
}

// Raw returns the JSON exactly as received.
func (s StockLevel) Raw() json.RawMessage {
	return s.raw
}

// Quantity returns the level as a decimal when it is numeric.
func (s StockLevel) Quantity() (decimal.Decimal, bool) {
	n, ok := s.value.(json.Number)
	if !ok {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// String renders the value the way it reads on the stock board: numbers in
// canonical form, strings without quotes, arrays comma-joined.
func (s StockLevel) String() string {
	return coerce(s.value, true)
}

func coerce(v interface{}, top bool) string {
	switch val := v.(type) {
	case nil:
		if top {
			return "null"
		}
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case json.Number:
		return formatNumber(val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = coerce(elem, false)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

var (
	exponentAbove = decimal.New(1, 21)
	exponentBelow = decimal.New(1, -6)
)

// formatNumber prints n in plain decimal notation when 1e-6 <= |n| < 1e21
// and in shortest exponent notation ("1e+21", "1.5e-7") otherwise.
func formatNumber(n json.Number) string {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return n.String()
	}
	abs := d.Abs()
	if d.IsZero() || (abs.Cmp(exponentBelow) >= 0 && abs.Cmp(exponentAbove) < 0) {
		return d.String()
	}

	f, _ := d.Float64()
	mantissa, exp, ok := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	if !ok {
		return n.String()
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
