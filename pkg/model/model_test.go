package model

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "acme", "acme"},
		{"upper", "ACME", "acme"},
		{"mixed", "AcMe Traders", "acme traders"},
		{"leading space", "  acme", "acme"},
		{"trailing space", "acme  ", "acme"},
		{"both", "  Acme  ", "acme"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"  Acme  ", "ACME", "a b c", "", " Mixed Case Name "}
	for _, in := range inputs {
		once := NormalizeName(in)
		twice := NormalizeName(once)
		if once != twice {
			t.Errorf("NormalizeName not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSameNameEquivalence(t *testing.T) {
	a, b, c := " Acme ", "acme", "ACME"

	// reflexive
	if !SameName(a, a) {
		t.Error("SameName is not reflexive")
	}
	// symmetric
	if SameName(a, b) != SameName(b, a) {
		t.Error("SameName is not symmetric")
	}
	// transitive
	if SameName(a, b) && SameName(b, c) && !SameName(a, c) {
		t.Error("SameName is not transitive")
	}

	if SameName("acme", "acme ltd") {
		t.Error("SameName matched distinct names")
	}
}

func TestPartnerIsActive(t *testing.T) {
	if !(Partner{State: PartnerActive}).IsActive() {
		t.Error("active partner reported inactive")
	}
	if (Partner{State: PartnerDeleted}).IsActive() {
		t.Error("deleted partner reported active")
	}
}
