package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Rating is an aggregate rating that keeps the text it was received as,
// so "4.50" is displayed as "4.50" rather than a re-formatted float.
type Rating struct {
	value decimal.Decimal
	text  string
}

// NewRating parses s as a decimal rating.
func NewRating(s string) (Rating, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rating{}, fmt.Errorf("parse rating %q: %w", s, err)
	}
	return Rating{value: d, text: s}, nil
}

// Decimal returns the numeric value.
func (r Rating) Decimal() decimal.Decimal {
	return r.value
}

func (r Rating) String() string {
	if r.text == "" {
		return r.value.String()
	}
	return r.text
}

// MarshalJSON writes the rating as a bare JSON number using the original text,
// or the canonical decimal form when the text is not a JSON number (".5", "5.").
func (r Rating) MarshalJSON() ([]byte, error) {
	text := []byte(r.String())
	if len(text) > 0 && text[0] != '"' && json.Valid(text) {
		return text, nil
	}
	return []byte(r.value.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Rating{}
		return nil
	}
	text := string(bytes.Trim(data, `"`))
	if text == "" {
		*r = Rating{}
		return nil
	}
	parsed, err := NewRating(text)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan implements sql.Scanner.
func (r *Rating) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = Rating{}
		return nil
	case []byte:
		return r.scanText(string(v))
	case string:
		return r.scanText(v)
	case float64:
		return r.scanText(strconv.FormatFloat(v, 'f', -1, 64))
	case int64:
		return r.scanText(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("scan rating: unsupported type %T", src)
	}
}

func (r *Rating) scanText(s string) error {
	parsed, err := NewRating(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer.
func (r Rating) Value() (driver.Value, error) {
	return r.String(), nil
}
