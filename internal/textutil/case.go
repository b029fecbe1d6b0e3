package textutil

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case names a case transform applied to rendered file names.
type Case string

const (
	CaseNone  Case = ""
	CaseLower Case = "lower"
	CaseUpper Case = "upper"
	CaseTitle Case = "title"
)

// ParseCase accepts lower, upper, title, or none/empty.
func ParseCase(value string) (Case, error) {
	switch c := Case(strings.ToLower(strings.TrimSpace(value))); c {
	case CaseNone, CaseLower, CaseUpper, CaseTitle:
		return c, nil
	case "none":
		return CaseNone, nil
	default:
		return CaseNone, fmt.Errorf("unknown case %q (want lower, upper, title, or none)", value)
	}
}

// ApplyCase transforms value with Unicode-aware casing.
func ApplyCase(value string, c Case) string {
	switch c {
	case CaseLower:
		return cases.Lower(language.Und).String(value)
	case CaseUpper:
		return cases.Upper(language.Und).String(value)
	case CaseTitle:
		return cases.Title(language.Und).String(value)
	default:
		return value
	}
}
