package rename

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"imgutil/internal/batch"
	"imgutil/internal/services"
	"imgutil/internal/textutil"
)

func items(paths ...string) []batch.Item {
	out := make([]batch.Item, len(paths))
	for i, p := range paths {
		out[i] = batch.Item{Index: i, Source: p}
	}
	return out
}

func destinations(t *testing.T, plan *Plan) []string {
	t.Helper()
	out := make([]string, len(plan.Pairs))
	for i, pair := range plan.Pairs {
		if pair.Err != nil {
			out[i] = "ERR"
			continue
		}
		out[i] = filepath.Base(pair.Destination)
	}
	return out
}

func TestBuildPlanPlainPatternAppendsIndex(t *testing.T) {
	plan, err := BuildPlan(items("/src/b.JPG", "/src/a.png"), "/dst", Options{Pattern: "holiday", StartIndex: 1})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	got := destinations(t, plan)
	if got[0] != "holiday_1.JPG" || got[1] != "holiday_2.png" {
		t.Fatalf("unexpected names: %v", got)
	}
	if plan.Pairs[0].Destination != filepath.Join("/dst", "holiday_1.JPG") {
		t.Fatalf("unexpected destination: %s", plan.Pairs[0].Destination)
	}
}

func TestBuildPlanDefaultPattern(t *testing.T) {
	plan, err := BuildPlan(items("/src/a.png"), "/dst", Options{StartIndex: 1})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if got := destinations(t, plan)[0]; got != "renamed_1.png" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestBuildPlanTokens(t *testing.T) {
	prev := dateFunc
	dateFunc = func(string) (time.Time, error) { return time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), nil }
	defer func() { dateFunc = prev }()

	plan, err := BuildPlan(items("/photos/trip/IMG_1.jpg", "/photos/trip/IMG_2.jpg"), "/dst",
		Options{Pattern: "{parent}-{date}-{n}-{name}", StartIndex: 7, PadWidth: 3, Case: textutil.CaseUpper})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	got := destinations(t, plan)
	if got[0] != "TRIP-20230704-007-IMG_1.jpg" || got[1] != "TRIP-20230704-008-IMG_2.jpg" {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestBuildPlanUnknownTokenFailsPair(t *testing.T) {
	plan, err := BuildPlan(items("/src/a.png"), "/dst", Options{Pattern: "{bogus}"})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if !errors.Is(plan.Pairs[0].Err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", plan.Pairs[0].Err)
	}
}

func TestBuildPlanDuplicates(t *testing.T) {
	plan, err := BuildPlan(items("/src/a.png", "/src/a.jpg", "/src/b.png"), "/dst", Options{Pattern: "{name}"})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	got := destinations(t, plan)
	if got[0] != "a.png" || got[1] != "a.jpg" || got[2] != "b.png" {
		t.Fatalf("different extensions must not collide: %v", got)
	}

	entries := []Entry{{New: "same"}, {New: "Same"}, {New: "other"}}
	plan, err = BuildPlan(items("/src/1.png", "/src/2.png", "/src/3.png"), "/dst", Options{Entries: entries})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	got = destinations(t, plan)
	if got[0] != "same.png" || got[1] != "ERR" || got[2] != "other.png" {
		t.Fatalf("expected second duplicate to fail: %v", got)
	}
}

func TestBuildPlanListCountMismatch(t *testing.T) {
	_, err := BuildPlan(items("/src/a.png", "/src/b.png"), "/dst", Options{Entries: []Entry{{New: "x"}}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "filename count does not match source file count") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestBuildPlanListOldNew(t *testing.T) {
	entries := []Entry{
		{Old: "a.png", New: "first.jpg"},
		{Old: "wrong.png", New: "second"},
		{Old: "c", New: "third"},
	}
	plan, err := BuildPlan(items("/src/a.png", "/src/b.png", "/src/c.png"), "/dst", Options{Entries: entries})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	got := destinations(t, plan)
	if got[0] != "first.png" {
		t.Fatalf("expected source extension to win, got %q", got[0])
	}
	if got[1] != "ERR" {
		t.Fatalf("expected mismatched old name to fail, got %q", got[1])
	}
	if got[2] != "third.png" {
		t.Fatalf("expected stem match to be accepted, got %q", got[2])
	}
}

func TestBuildPlanSanitizesNames(t *testing.T) {
	plan, err := BuildPlan(items("/src/a.png"), "/dst", Options{Entries: []Entry{{New: "what?: now"}}})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if got := destinations(t, plan)[0]; got != "what- now.png" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
}

func TestParseList(t *testing.T) {
	input := "\uFEFFa.jpg|beach\n\n  b.jpg | sunset.png \nplain\n"
	entries, err := ParseList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseList: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0] != (Entry{Old: "a.jpg", New: "beach"}) || entries[1] != (Entry{Old: "b.jpg", New: "sunset.png"}) || entries[2] != (Entry{New: "plain"}) {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if _, err := ParseList(strings.NewReader("a.jpg|\n")); err == nil {
		t.Fatal("expected error for missing new name")
	}
}

func TestValidatePattern(t *testing.T) {
	for _, p := range []string{"", "trip", "{n}", "{date}_{name}"} {
		if err := ValidatePattern(p); err != nil {
			t.Errorf("ValidatePattern(%q): %v", p, err)
		}
	}
	for _, p := range []string{"{nope}", "open{n"} {
		if err := ValidatePattern(p); err == nil {
			t.Errorf("ValidatePattern(%q) expected error", p)
		}
	}
}
