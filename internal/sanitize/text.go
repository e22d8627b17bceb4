// Package sanitize makes raw spreadsheet cells safe for the import pipeline:
// numbers with decimal commas, coordinates, and "not applicable" sentinels.
// Nothing here returns an error; bad input becomes nil.
package sanitize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var sentinels = map[string]struct{}{
	"nao se aplica":  {},
	"n se aplica":    {},
	"nao aplicavel":  {},
	"n/a":            {},
	"na":             {},
	"n.a.":           {},
	"-":              {},
	"--":             {},
	"—":              {},
	"–":              {},
	"null":           {},
	"none":           {},
	"nan":            {},
	"s/i":            {},
	"sem informacao": {},
}

// Fold lowercases, strips diacritics and collapses whitespace.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

// IsSentinel reports whether s is one of the "no value" markers used in
// project spreadsheets ("Não se aplica", "N/A", "-", ...).
func IsSentinel(s string) bool {
	_, ok := sentinels[Fold(s)]
	return ok
}

// Text trims a cell and returns nil for empty values and sentinels.
// Numbers are rendered without exponent.
func Text(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || IsSentinel(s) {
		return nil
	}
	return &s
}

// TextOr is Text with a fallback for nil.
func TextOr(v any, def string) string {
	if p := Text(v); p != nil {
		return *p
	}
	return def
}
