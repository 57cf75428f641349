package model

import "strings"

// Variant identifies a SPED report type ("SpedFiscal", "SpedEcf", ...).
//
// The value is sent as is to the remote service; unknown values are not
// rejected locally and surface as a service-level error instead.
type Variant string

// Known variants exposed by the table service.
const (
	VariantFiscal    Variant = "SpedFiscal"
	VariantPisCofins Variant = "SpedPisCofins"
	VariantContabil  Variant = "SpedContabil"
	VariantEcf       Variant = "SpedEcf"
)

// DefaultVariants returns the variants processed when none are configured.
func DefaultVariants() []Variant {
	return []Variant{VariantFiscal, VariantPisCofins, VariantContabil, VariantEcf}
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}

// ParseVariants splits a comma or newline separated list into variants.
// Blank entries are dropped and duplicates keep their first position.
func ParseVariants(input string) []Variant {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	seen := make(map[Variant]bool, len(fields))
	var variants []Variant
	for _, f := range fields {
		v := Variant(strings.TrimSpace(f))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		variants = append(variants, v)
	}
	return variants
}
