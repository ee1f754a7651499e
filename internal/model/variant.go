package model

import "strings"

// Variant labels the house-rule variant a game was played under.
type Variant string

// Known variants, in cycle order.
const (
	VariantPanee  Variant = "パねぇ！"
	VariantParty  Variant = "パーチー"
	VariantNormal Variant = "普通"
)

// DefaultVariant is used when a record carries no type.
const DefaultVariant = VariantPanee

var variants = []Variant{VariantPanee, VariantParty, VariantNormal}

// variantAliases maps substrings found in spreadsheet cells to a variant.
var variantAliases = []struct {
	substr  string
	variant Variant
}{
	{"パネェ", VariantPanee},
	{"パねぇ", VariantPanee},
	{"パーチー", VariantParty},
	{"普通", VariantNormal},
	{"どっちも", VariantNormal},
}

// Variants returns the known variants in cycle order.
func Variants() []Variant {
	return append([]Variant(nil), variants...)
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	for _, known := range variants {
		if v == known {
			return true
		}
	}
	return false
}

// OrDefault returns v, or DefaultVariant when v is empty.
func (v Variant) OrDefault() Variant {
	if v == "" {
		return DefaultVariant
	}
	return v
}

// Next returns the variant after v in cycle order.
// Unknown or empty variants are treated as the default.
func (v Variant) Next() Variant {
	idx := 0
	for i, known := range variants {
		if v.OrDefault() == known {
			idx = i
			break
		}
	}
	return variants[(idx+1)%len(variants)]
}

// MatchVariant finds the variant named by a free-form cell.
func MatchVariant(cell string) (Variant, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return "", false
	}
	for _, a := range variantAliases {
		if strings.Contains(cell, a.substr) {
			return a.variant, true
		}
	}
	return "", false
}
