package models

import "golang.org/x/text/unicode/norm"

// NormalizeName maps an item name to its canonical Unicode composition (NFC).
// Used for equality comparisons only; names are stored exactly as scanned.
func NormalizeName(name string) string {
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}

// EqualNames compares two item names case-sensitively modulo Unicode
// normalization (macOS stores decomposed forms)
func EqualNames(a, b string) bool {
	if a == b {
		return true
	}
	return NormalizeName(a) == NormalizeName(b)
}
