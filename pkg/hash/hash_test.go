package hash

import (
	"strings"
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known vector for empty string
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := SHA256Hex(""); got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}

	if SHA256Hex("a") == SHA256Hex("b") {
		t.Error("distinct inputs produced identical hashes")
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normal", "wireless earbuds", "wireless earbuds"},
		{"mixed case", "Wireless Earbuds", "wireless earbuds"},
		{"padded and collapsed", "  wireless   earbuds ", "wireless earbuds"},
		{"tabs and newlines", "wireless\tearbuds\n", "wireless earbuds"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.input); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuery_EquivalentQueriesCollide(t *testing.T) {
	a := NormalizeQuery("Wireless Earbuds")
	b := NormalizeQuery(" wireless   earbuds ")
	if a != b {
		t.Errorf("equivalent queries normalize differently: %q vs %q", a, b)
	}
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint(16, "channels", "US", "en")
	if len(fp) != 16 {
		t.Errorf("Fingerprint length = %d, want 16", len(fp))
	}

	// Deterministic
	if fp != Fingerprint(16, "channels", "US", "en") {
		t.Error("Fingerprint is not deterministic")
	}

	// Separator prevents boundary ambiguity
	if Fingerprint(16, "ab", "c") == Fingerprint(16, "a", "bc") {
		t.Error("Fingerprint collides across part boundaries")
	}

	// Out-of-range prefix returns the full hash
	if got := Fingerprint(0, "x"); len(got) != 64 {
		t.Errorf("Fingerprint(0) length = %d, want 64", len(got))
	}
	if got := Fingerprint(100, "x"); len(got) != 64 {
		t.Errorf("Fingerprint(100) length = %d, want 64", len(got))
	}
	if !strings.EqualFold(Fingerprint(100, "x"), SHA256Hex("x")) {
		t.Error("full-length Fingerprint should equal SHA256Hex")
	}
}
