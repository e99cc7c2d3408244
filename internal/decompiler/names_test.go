package decompiler

import "testing"

func TestSanitizeIdentAcceptsValidNames(t *testing.T) {
	if got := sanitizeIdent("count", "fallback"); got != "count" {
		t.Errorf("sanitizeIdent(count) = %q, want unchanged", got)
	}
	if got := sanitizeIdent("_private", "fallback"); got != "_private" {
		t.Errorf("sanitizeIdent(_private) = %q, want unchanged", got)
	}
}

func TestSanitizeIdentRejectsReservedWords(t *testing.T) {
	for _, reserved := range []string{"class", "function", "this", "switch", "static"} {
		if got := sanitizeIdent(reserved, "fallback"); got != "fallback" {
			t.Errorf("sanitizeIdent(%q) = %q, want fallback", reserved, got)
		}
	}
}

func TestSanitizeIdentRejectsMalformedNames(t *testing.T) {
	cases := []string{"", "1leading", "has space", "has-dash"}
	for _, name := range cases {
		if got := sanitizeIdent(name, "fallback"); got != "fallback" {
			t.Errorf("sanitizeIdent(%q) = %q, want fallback", name, got)
		}
	}
}

func TestNormalizeStringIsIdempotent(t *testing.T) {
	s := normalizeString("café")
	if normalizeString(s) != s {
		t.Errorf("normalizeString should be idempotent on already-normalized input")
	}
}

func TestSynthRegName(t *testing.T) {
	if got, want := synthRegName(3), "_r3"; got != want {
		t.Errorf("synthRegName(3) = %q, want %q", got, want)
	}
}
