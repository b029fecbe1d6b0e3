package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"holiday/2024", "holiday-2024"},
		{`a:b*c?d"e<f>g|h`, "a-b-cdefgh"},
		{"  spaced  ", "spaced"},
		{"..", ""},
		{"tab\tname", "tabname"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApplyCase(t *testing.T) {
	tests := []struct {
		in   string
		c    Case
		want string
	}{
		{"Summer Trip", CaseLower, "summer trip"},
		{"summer trip", CaseUpper, "SUMMER TRIP"},
		{"summer trip", CaseTitle, "Summer Trip"},
		{"straße", CaseUpper, "STRASSE"},
		{"Keep", CaseNone, "Keep"},
	}
	for _, tt := range tests {
		if got := ApplyCase(tt.in, tt.c); got != tt.want {
			t.Errorf("ApplyCase(%q, %q) = %q, want %q", tt.in, tt.c, got, tt.want)
		}
	}
}

func TestParseCase(t *testing.T) {
	for _, in := range []string{"", "none", "LOWER", "upper", "Title"} {
		if _, err := ParseCase(in); err != nil {
			t.Errorf("ParseCase(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseCase("camel"); err == nil {
		t.Fatal("expected error for unknown case")
	}
}
