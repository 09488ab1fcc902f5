package pos

import "testing"

func TestFilterMatch(t *testing.T) {
	f := NewFilter("POSH", 5)

	tests := []struct {
		name        string
		description string
		want        bool
	}{
		{name: "prefix and five digit suffix", description: "POSH12345", want: true},
		{name: "prefix and long suffix", description: "POSH TAHSILAT 0098765432", want: true},
		{name: "suffix too short", description: "POSH123", want: false},
		{name: "wrong prefix", description: "INVOICE99999", want: false},
		{name: "digits in the middle only", description: "POSH12345X", want: false},
		{name: "empty description", description: "", want: false},
		{name: "surrounding whitespace", description: "  POSH54321  ", want: true},
		{name: "prefix alone", description: "POSH", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Match(tc.description); got != tc.want {
				t.Errorf("Match(%q) = %v, want %v", tc.description, got, tc.want)
			}
		})
	}
}

func TestFilterCustomPrefix(t *testing.T) {
	f := NewFilter("EPOS-", 6)

	if !f.Match("EPOS-123456") {
		t.Error("expected EPOS-123456 to match a 6-digit EPOS- filter")
	}
	if f.Match("POSH123456") {
		t.Error("POSH123456 must not match an EPOS- filter")
	}
	if f.Match("EPOS-12345") {
		t.Error("EPOS-12345 has only 5 trailing digits, must not match")
	}
}

func TestFilterZeroValueDefaults(t *testing.T) {
	var f Filter

	if !f.Match("POSH00001") {
		t.Error("zero-value filter should apply the default POSH/5 rule")
	}
	if f.Match("POSH1") {
		t.Error("zero-value filter should still require 5 trailing digits")
	}
}
