package fields

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Company Name", "company name"},
		{"underscores", "company_name", "company name"},
		{"hyphens", "company-name", "company name"},
		{"mixed separators", "Company_Name-Field", "company name field"},
		{"surrounding whitespace", "  ein  ", "ein"},
		{"collapsed whitespace", "zip   code", "zip code"},
		{"tabs and newlines", "tax\tid\n", "tax id"},
		{"empty", "", ""},
		{"only separators", "___", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Acme Corporation", "acme corporation"},
		{"  Acme Corporation  ", "acme corporation"},
		{"ACME", "acme"},
		{"", ""},
	}

	for _, tt := range tests {
		got := NormalizeValue(tt.input)
		if got != tt.expected {
			t.Errorf("NormalizeValue(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeValue_KeepsInternalPunctuation(t *testing.T) {
	// Value normalization is comparison-only; it must not fold separators
	// the way field-name normalization does.
	got := NormalizeValue("12-3456789")
	if got != "12-3456789" {
		t.Errorf("NormalizeValue(%q) = %q, want %q", "12-3456789", got, "12-3456789")
	}
}
