package savedquery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"orders", "orders"},
		{" Orders ", "orders"},
		{"/orders/recent", "orders/recent"},
		{"Billing/Invoice/", "billing/invoice"},
		{"\t/ÄRGER \n", "ärger"},
		{"Cafe\u0301", "caf\u00e9"},
		{"/ /x/ ", "x"},
		{"", ""},
		{"///", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.in))
		})
	}
}

func TestCanonicalName_Idempotent(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		name := rapid.StringOf(rapid.RuneFrom([]rune("aZéÉΣσ/ \t_.0\u0301"))).Draw(r, "name")
		once := CanonicalName(name)
		if twice := CanonicalName(once); twice != once {
			r.Fatalf("CanonicalName not idempotent: %q -> %q -> %q", name, once, twice)
		}
	})
}

func TestCanonicalName_IgnoresCaseAndPadding(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		name := rapid.StringMatching(`[a-z][a-z0-9_]{0,8}(/[a-z0-9_]{1,8}){0,3}`).Draw(r, "name")
		pad := rapid.StringMatching(`[ \t]{0,3}`).Draw(r, "pad")

		variant := pad + "/" + strings.ToUpper(name) + pad
		if got := CanonicalName(variant); got != name {
			r.Fatalf("CanonicalName(%q) = %q, want %q", variant, got, name)
		}
	})
}

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"orders.sql", "orders"},
		{"billing/invoice.sql", "billing/invoice"},
		{"Reports/Daily.Totals.sql", "reports/daily.totals"},
		{"noext", "noext"},
		{"deep/er/still/q.txt", "deep/er/still/q"},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, NameFromPath(tt.rel))
		})
	}
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod("get")
	assert.True(t, ok)
	assert.Equal(t, MethodGet, m)

	m, ok = ParseMethod(" POST ")
	assert.True(t, ok)
	assert.Equal(t, MethodPost, m)

	_, ok = ParseMethod("DELETE")
	assert.False(t, ok)
}

func TestKeyString(t *testing.T) {
	k := Key{Project: "shop", Method: MethodGet, Name: "orders/recent"}
	assert.Equal(t, "GET shop::orders/recent", k.String())
}
