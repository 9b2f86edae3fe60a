package utils

import "testing"

func TestParseDecimal_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"USD 20,000", "20000"},
		{"USD -20,000", "-20000"},
		{"  $ 1,234.50  ", "1234.5"},
		{"950.00", "950"},
		{"-0.25", "-0.25"},
	}
	for _, tc := range cases {
		d, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseDecimal(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestParseDecimal_RejectsGarbage(t *testing.T) {
	cases := []string{"", "   ", "abc", "-", "1.2.3", "."}
	for _, tc := range cases {
		if _, err := ParseDecimal(tc); err == nil {
			t.Fatalf("ParseDecimal(%q) expected error, got none", tc)
		}
	}
}
