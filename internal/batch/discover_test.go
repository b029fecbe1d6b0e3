package batch_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"imgutil/internal/batch"
	"imgutil/internal/services"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sources(items []batch.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = filepath.Base(item.Source)
	}
	return out
}

func TestDiscoverSortedNonRecursive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.png", "a.JPG", "b.txt", ".hidden.png", "nested/d.png"} {
		touch(t, filepath.Join(dir, name))
	}

	items, err := batch.Discover(dir, batch.DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	got := sources(items)
	want := []string{"a.JPG", "b.txt", "c.png"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
		if items[i].Index != i {
			t.Fatalf("item %d has index %d", i, items[i].Index)
		}
	}
}

func TestDiscoverExtensionsAndRecursion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.JPG", "b.txt", "nested/c.png", ".cache/d.png"} {
		touch(t, filepath.Join(dir, name))
	}

	items, err := batch.Discover(dir, batch.DiscoverOptions{Recursive: true, Extensions: []string{"jpg", ".png"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	got := sources(items)
	if len(got) != 2 || got[0] != "a.JPG" || got[1] != "c.png" {
		t.Fatalf("unexpected items: %v", got)
	}

	items, err = batch.Discover(dir, batch.DiscoverOptions{Recursive: true, IncludeHidden: true, Extensions: []string{".png"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected hidden directory to be scanned, got %v", sources(items))
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, err := batch.Discover(filepath.Join(t.TempDir(), "missing"), batch.DiscoverOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPrepareDestination(t *testing.T) {
	src := t.TempDir()
	if err := batch.PrepareDestination(src, src, true); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for identical directories, got %v", err)
	}
	if err := batch.PrepareDestination(src, filepath.Join(src, "."), true); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for equivalent paths, got %v", err)
	}
	if err := batch.PrepareDestination(src, src, false); err != nil {
		t.Fatalf("in-place destination should be allowed when not distinct: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "out", "nested")
	if err := batch.PrepareDestination(src, dest, true); err != nil {
		t.Fatalf("PrepareDestination: %v", err)
	}
	if info, err := os.Stat(dest); err != nil || !info.IsDir() {
		t.Fatalf("expected destination to be created: %v", err)
	}
}

func TestLockDestination(t *testing.T) {
	lockDir := t.TempDir()
	dest := t.TempDir()

	first, err := batch.LockDestination(lockDir, dest)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := batch.LockDestination(lockDir, dest); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected second lock to fail, got %v", err)
	}
	other, err := batch.LockDestination(lockDir, t.TempDir())
	if err != nil {
		t.Fatalf("lock on other destination: %v", err)
	}
	defer other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	again, err := batch.LockDestination(lockDir, dest)
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	_ = again.Release()

	var nilLock *batch.DestinationLock
	if err := nilLock.Release(); err != nil {
		t.Fatalf("nil release: %v", err)
	}
}
