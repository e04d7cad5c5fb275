package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPrice is returned when a price cannot be normalized to whole units.
var ErrInvalidPrice = errors.New("invalid price")

// RawPrice is a price as found in the dataset: either currency-formatted text
// ("$1,234") or a plain number.
type RawPrice struct {
	text    string
	number  float64
	numeric bool
}

// TextPrice wraps a textual price.
func TextPrice(s string) RawPrice { return RawPrice{text: s} }

// NumericPrice wraps a numeric price.
func NumericPrice(v float64) RawPrice { return RawPrice{number: v, numeric: true} }

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (p *RawPrice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = TextPrice(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, string(data))
	}
	*p = NumericPrice(f)
	return nil
}

// Normalize converts the price to whole currency units. Text has a leading
// currency symbol and thousands separators stripped before parsing; numbers
// are truncated toward zero.
func (p RawPrice) Normalize() (int64, error) {
	if p.numeric {
		if math.IsNaN(p.number) || math.IsInf(p.number, 0) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, p.number)
		}
		return int64(p.number), nil
	}

	s := strings.TrimSpace(p.text)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, p.text)
	}
	return int64(f), nil
}
