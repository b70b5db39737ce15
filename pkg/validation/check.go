package validation

import "strings"

// Result is the outcome of Check.
type Result struct {
	Kind      string `json:"kind"`
	Value     string `json:"value"`
	Valid     bool   `json:"valid"`
	Formatted string `json:"formatted"`
}

// Kinds lists the names accepted by Check.
var Kinds = []string{"nip", "iban", "postal", "address"}

// Check runs the validator and formatter named by kind on value.
// ok is false for an unknown kind.
func Check(kind, value string) (result Result, ok bool) {
	result = Result{Kind: strings.ToLower(strings.TrimSpace(kind)), Value: value}

	switch result.Kind {
	case "nip":
		result.Valid = IsValidNIP(value)
		result.Formatted = FormatNIP(value)
	case "iban", "nrb":
		result.Valid = IsValidIBAN(value)
		result.Formatted = FormatIBAN(value)
	case "postal", "postal_code":
		result.Formatted = FormatPostalCode(value)
		result.Valid = IsValidPostalCode(result.Formatted)
	case "address":
		result.Formatted = FormatStreetAddress(value)
		result.Valid = IsValidStreetAddress(result.Formatted)
	default:
		return result, false
	}
	return result, true
}
