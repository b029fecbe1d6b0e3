package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"imgutil/internal/services"
)

// DiscoverOptions controls source enumeration.
type DiscoverOptions struct {
	Recursive     bool
	Extensions    []string
	IncludeHidden bool
}

// Discover lists regular files under dir sorted lexicographically by path.
// Only the top level is scanned unless Recursive is set. An empty extension
// list accepts every file; matching is case-insensitive.
func Discover(dir string, opts DiscoverOptions) ([]Item, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrValidation, "discover", "", fmt.Sprintf("source directory %s does not exist", dir), nil)
		}
		return nil, fmt.Errorf("stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "discover", "", fmt.Sprintf("%s is not a directory", dir), nil)
	}

	allowed := extensionSet(opts.Extensions)
	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == dir {
			return nil
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if !opts.Recursive || (hidden && !opts.IncludeHidden) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden && !opts.IncludeHidden {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if len(allowed) > 0 {
			if _, ok := allowed[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Strings(paths)
	items := make([]Item, len(paths))
	for i, path := range paths {
		items[i] = Item{Index: i, Source: path}
	}
	return items, nil
}

func extensionSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

// PrepareDestination validates the source/destination pair and creates the
// destination directory when missing. When distinct is set the two
// directories must differ.
func PrepareDestination(source, destination string, distinct bool) error {
	if strings.TrimSpace(destination) == "" {
		return services.Wrap(services.ErrValidation, "batch", "destination", "destination directory is required", nil)
	}
	if distinct {
		same, err := sameDirectory(source, destination)
		if err != nil {
			return err
		}
		if same {
			return services.Wrap(services.ErrValidation, "batch", "destination", "source and destination directories must differ", nil)
		}
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	return nil
}

func sameDirectory(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if filepath.Clean(absA) == filepath.Clean(absB) {
		return true, nil
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}
