package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingNumberRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)
	thousandsSepRegex  = regexp.MustCompile(`(\d),(\d{3})`)
)

// ParseLeadingNumber extracts the first numeric token from free text such as
// "US $1,299.99" or "35%". It reports false when the text holds no number.
func ParseLeadingNumber(s string) (float64, bool) {
	s = thousandsSepRegex.ReplaceAllString(s, "$1$2")
	token := leadingNumberRegex.FindString(s)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FlexString decodes from a JSON string or number and always encodes as a string.
// Marketplaces disagree on whether identifiers and prices are numeric.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*f = FlexString(data)
	case 't', 'f':
		*f = FlexString(data)
	default:
		return fmt.Errorf("flex string: unsupported JSON value %s", string(data))
	}
	return nil
}

// FlexFloat decodes from a JSON number or a numeric string and encodes as a number.
// Unparseable strings decode to zero instead of failing the whole payload.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, _ := ParseLeadingNumber(strings.TrimSpace(s))
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("flex float: %w", err)
	}
	*f = FlexFloat(v)
	return nil
}

// EtsyPrice decodes the listing price, which Etsy v3 sends as
// {"amount":1999,"divisor":100} while older payloads use a decimal string.
// It always encodes as a plain number.
type EtsyPrice float64

// UnmarshalJSON implements json.Unmarshaler
func (p *EtsyPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var money struct {
			Amount  float64 `json:"amount"`
			Divisor float64 `json:"divisor"`
		}
		if err := json.Unmarshal(data, &money); err != nil {
			return fmt.Errorf("etsy price: %w", err)
		}
		if money.Divisor <= 0 {
			money.Divisor = 1
		}
		*p = EtsyPrice(money.Amount / money.Divisor)
		return nil
	}

	var f FlexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = EtsyPrice(f)
	return nil
}
