package models

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Price is a non-negative amount stored as cents. It is written as a
// two-decimal string ("5.00") and fits numeric(5,2).
type Price int64

// MaxPrice is 999.99.
const MaxPrice Price = 99999

var (
	ErrInvalidPrice  = errors.New("a valid number is required")
	ErrPriceNegative = errors.New("ensure this value is greater than or equal to 0")
	ErrPricePlaces   = errors.New("ensure that there are no more than 2 decimal places")
	ErrPriceTooLarge = errors.New("ensure that there are no more than 3 digits before the decimal point")
)

// ParsePrice reads a decimal such as "5", "5.5" or "12.99".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}
	if strings.HasPrefix(s, "-") {
		if _, err := ParsePrice(s[1:]); err != nil {
			return 0, err
		}
		return 0, ErrPriceNegative
	}
	s = strings.TrimPrefix(s, "+")

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && hasDot {
		whole = "0"
	}
	if !digitsOnly(whole) || (frac != "" && !digitsOnly(frac)) || (whole == "0" && frac == "" && s == ".") {
		return 0, ErrInvalidPrice
	}
	if len(frac) > 2 {
		return 0, ErrPricePlaces
	}

	whole = strings.TrimLeft(whole, "0")
	if len(whole) > 3 {
		return 0, ErrPriceTooLarge
	}
	var units int64
	if whole != "" {
		units, _ = strconv.ParseInt(whole, 10, 64)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	return Price(units*100 + cents), nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON accepts both a JSON number and a decimal string.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ErrInvalidPrice
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return ErrInvalidPrice
		}
		raw = unquoted
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

func (p *Price) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = 0
	case int64:
		*p = Price(v * 100)
	case float64:
		*p = Price(math.Round(v * 100))
	case []byte:
		return p.scanString(string(v))
	case string:
		return p.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Price", src)
	}
	return nil
}

func (p *Price) scanString(s string) error {
	parsed, err := ParsePrice(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil {
			return fmt.Errorf("scan price %q: %w", s, err)
		}
		parsed = Price(math.Round(f * 100))
	}
	*p = parsed
	return nil
}
