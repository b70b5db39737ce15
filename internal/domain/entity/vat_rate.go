package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VATRateKind discriminates the two shapes a VAT rate can take.
type VATRateKind uint8

const (
	// VATRateInvalid is the zero value; it never passes validation.
	VATRateInvalid VATRateKind = iota
	// VATRatePercentage is a taxed rate: 0, 5, 8 or 23 percent.
	VATRatePercentage
	// VATRateExempt is an exemption code: ZW or NP. Exempt lines carry no VAT.
	VATRateExempt
)

// Exemption codes.
const (
	ExemptZW = "ZW" // zwolniony
	ExemptNP = "NP" // nie podlega
)

// ErrInvalidVATRate is returned for rates outside {0, 5, 8, 23, ZW, NP}.
var ErrInvalidVATRate = errors.New("invalid VAT rate")

// VATRate is either Percentage(0|5|8|23) or Exempt(ZW|NP).
type VATRate struct {
	kind    VATRateKind
	percent int
	code    string
}

// Predefined rates.
var (
	Rate23 = VATRate{kind: VATRatePercentage, percent: 23}
	Rate8  = VATRate{kind: VATRatePercentage, percent: 8}
	Rate5  = VATRate{kind: VATRatePercentage, percent: 5}
	Rate0  = VATRate{kind: VATRatePercentage, percent: 0}
	RateZW = VATRate{kind: VATRateExempt, code: ExemptZW}
	RateNP = VATRate{kind: VATRateExempt, code: ExemptNP}
)

// Percentage returns the taxed rate for p, which must be 0, 5, 8 or 23.
func Percentage(p int) (VATRate, error) {
	switch p {
	case 0, 5, 8, 23:
		return VATRate{kind: VATRatePercentage, percent: p}, nil
	}
	return VATRate{}, fmt.Errorf("%w: %d%%", ErrInvalidVATRate, p)
}

// Exempt returns the exemption rate for code ZW or NP (case-insensitive).
func Exempt(code string) (VATRate, error) {
	switch c := strings.ToUpper(strings.TrimSpace(code)); c {
	case ExemptZW, ExemptNP:
		return VATRate{kind: VATRateExempt, code: c}, nil
	}
	return VATRate{}, fmt.Errorf("%w: %q", ErrInvalidVATRate, code)
}

// ParseVATRate accepts "23", "23%", "ZW", "np" and similar spellings.
func ParseVATRate(s string) (VATRate, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimSuffix(t, "%")
	if p, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
		return Percentage(p)
	}
	return Exempt(t)
}

// Kind reports which variant r holds.
func (r VATRate) Kind() VATRateKind { return r.kind }

// Percent returns the percentage for taxed rates and 0 otherwise.
func (r VATRate) Percent() int { return r.percent }

// Code returns the exemption code for exempt rates and "" otherwise.
func (r VATRate) Code() string { return r.code }

// IsValid reports whether r is one of the six allowed rates.
func (r VATRate) IsValid() bool { return r.kind != VATRateInvalid }

// Label is the breakdown key: "23%" for taxed rates, the code for exempt ones.
func (r VATRate) Label() string {
	switch r.kind {
	case VATRatePercentage:
		return strconv.Itoa(r.percent) + "%"
	case VATRateExempt:
		return r.code
	}
	return ""
}

func (r VATRate) String() string { return r.Label() }

// MarshalJSON encodes taxed rates as numbers and exempt rates as strings.
func (r VATRate) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case VATRatePercentage:
		return []byte(strconv.Itoa(r.percent)), nil
	case VATRateExempt:
		return json.Marshal(r.code)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts 23, "23", "23%", "ZW" or "NP".
func (r *VATRate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = VATRate{}
		return nil
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}

	parsed, err := ParseVATRate(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
