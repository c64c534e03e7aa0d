package savedquery

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CanonicalName returns the lookup form of a logical name: lower-cased, NFC
// normalized, with surrounding whitespace and slashes removed.
func CanonicalName(name string) string {
	// A Caser is stateful; one per call keeps this safe for concurrent use.
	n := cases.Lower(language.Und).String(strings.TrimSpace(name))
	n = norm.NFC.String(n)
	for {
		trimmed := strings.TrimSpace(strings.Trim(n, "/"))
		if trimmed == n {
			return n
		}
		n = trimmed
	}
}

// NameFromPath derives the canonical logical name from a template path
// relative to its project/METHOD directory: the final extension is dropped
// and separators become "/".
//
//	billing/invoice.sql -> billing/invoice
//	Reports/Daily.Totals.sql -> reports/daily.totals
func NameFromPath(rel string) string {
	rel = filepath.ToSlash(rel)
	base := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		base = rel[i+1:]
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		rel = strings.TrimSuffix(rel, ext)
	}
	return CanonicalName(rel)
}
