package rename

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one line of a rename list. Old is empty for bare "new" lines.
type Entry struct {
	Old string
	New string
}

// ParseList reads one entry per line in "new" or "old|new" form. Blank lines
// are ignored.
func ParseList(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if text == "" {
			continue
		}
		entry := Entry{New: text}
		if old, newName, ok := strings.Cut(text, "|"); ok {
			entry = Entry{Old: strings.TrimSpace(old), New: strings.TrimSpace(newName)}
		}
		if entry.New == "" {
			return nil, fmt.Errorf("line %d: missing new file name", line)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rename list: %w", err)
	}
	return entries, nil
}

// LoadList parses the rename list at path.
func LoadList(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rename list: %w", err)
	}
	defer f.Close()
	return ParseList(f)
}
