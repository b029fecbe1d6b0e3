package rename

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"imgutil/internal/batch"
	"imgutil/internal/codec"
	"imgutil/internal/services"
	"imgutil/internal/textutil"
)

const (
	// DefaultPattern is used when neither a pattern nor a list is given.
	DefaultPattern = "renamed"
	dateLayout     = "20060102"
)

const countMismatchMessage = "filename count does not match source file count"

// Options controls how destination names are derived.
type Options struct {
	Pattern    string
	Entries    []Entry
	StartIndex int
	PadWidth   int
	Case       textutil.Case
}

// Pair maps one source item to its destination. Err is set when the name
// could not be planned; such pairs fail when executed.
type Pair struct {
	Item        batch.Item
	Destination string
	Err         error
}

// Plan is the full source to destination mapping for a batch.
type Plan struct {
	DestinationDir string
	Pairs          []Pair
}

// dateFunc resolves the {date} token. Tests replace it.
var dateFunc = codec.DateTakenOrModified

// BuildPlan renders destination names for items. A list whose length differs
// from the number of items fails the whole plan.
func BuildPlan(items []batch.Item, destinationDir string, opts Options) (*Plan, error) {
	if opts.Entries != nil && len(opts.Entries) != len(items) {
		return nil, services.Wrap(services.ErrValidation, "rename", "plan",
			fmt.Sprintf("%s (%d names, %d files)", countMismatchMessage, len(opts.Entries), len(items)), nil)
	}

	plan := &Plan{DestinationDir: destinationDir, Pairs: make([]Pair, len(items))}
	seen := make(map[string]int, len(items))
	for i, item := range items {
		pair := Pair{Item: item}
		var stem string
		var err error
		if opts.Entries != nil {
			stem, err = listStem(item, opts.Entries[i])
		} else {
			stem, err = patternStem(item, opts)
		}
		if err == nil {
			stem = textutil.SanitizeFileName(textutil.ApplyCase(stem, opts.Case))
			if stem == "" {
				err = services.Wrap(services.ErrValidation, "rename", "plan", "rendered name is empty", nil)
			}
		}
		if err != nil {
			pair.Err = err
			plan.Pairs[i] = pair
			continue
		}

		pair.Destination = filepath.Join(destinationDir, stem+filepath.Ext(item.Source))
		key := strings.ToLower(pair.Destination)
		if first, dup := seen[key]; dup {
			pair.Err = services.Wrap(services.ErrValidation, "rename", "plan",
				fmt.Sprintf("destination %s duplicates %s", filepath.Base(pair.Destination), filepath.Base(items[first].Source)), nil)
		} else {
			seen[key] = i
		}
		plan.Pairs[i] = pair
	}
	return plan, nil
}

func listStem(item batch.Item, entry Entry) (string, error) {
	if entry.Old != "" && !matchesSource(entry.Old, item.Source) {
		return "", services.Wrap(services.ErrValidation, "rename", "list",
			fmt.Sprintf("list entry %q does not match source %s", entry.Old, filepath.Base(item.Source)), nil)
	}
	name := filepath.Base(entry.New)
	return strings.TrimSuffix(name, filepath.Ext(name)), nil
}

func matchesSource(old, source string) bool {
	oldBase := filepath.Base(old)
	srcBase := filepath.Base(source)
	if oldBase == srcBase {
		return true
	}
	return strings.TrimSuffix(oldBase, filepath.Ext(oldBase)) == strings.TrimSuffix(srcBase, filepath.Ext(srcBase)) &&
		filepath.Ext(oldBase) == ""
}

func patternStem(item batch.Item, opts Options) (string, error) {
	pattern := strings.TrimSpace(opts.Pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !strings.Contains(pattern, "{") {
		pattern += "_{n}"
	}

	number := opts.StartIndex + item.Index
	num := strconv.Itoa(number)
	if opts.PadWidth > 0 {
		num = fmt.Sprintf("%0*d", opts.PadWidth, number)
	}
	base := filepath.Base(item.Source)

	var renderErr error
	replacer := func(token string) string {
		switch token {
		case "n":
			return num
		case "name":
			return strings.TrimSuffix(base, filepath.Ext(base))
		case "parent":
			return filepath.Base(filepath.Dir(item.Source))
		case "date":
			taken, err := dateFunc(item.Source)
			if err != nil {
				renderErr = err
				return ""
			}
			return taken.Format(dateLayout)
		default:
			renderErr = services.Wrap(services.ErrValidation, "rename", "pattern", fmt.Sprintf("unknown token {%s}", token), nil)
			return ""
		}
	}
	out, err := expandTokens(pattern, replacer)
	if err != nil {
		return "", err
	}
	return out, renderErr
}

// expandTokens replaces every {token} in pattern using fn.
func expandTokens(pattern string, fn func(string) string) (string, error) {
	var b strings.Builder
	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		closeIdx := strings.IndexByte(rest[open:], '}')
		if closeIdx < 0 {
			return "", services.Wrap(services.ErrValidation, "rename", "pattern", fmt.Sprintf("unterminated token in %q", pattern), nil)
		}
		b.WriteString(rest[:open])
		b.WriteString(fn(strings.ToLower(rest[open+1 : open+closeIdx])))
		rest = rest[open+closeIdx+1:]
	}
}

var knownTokens = map[string]struct{}{"n": {}, "name": {}, "parent": {}, "date": {}}

// ValidatePattern checks pattern syntax without touching any file.
func ValidatePattern(pattern string) error {
	var unknown string
	_, err := expandTokens(pattern, func(token string) string {
		if _, ok := knownTokens[token]; !ok && unknown == "" {
			unknown = token
		}
		return ""
	})
	if err != nil {
		return err
	}
	if unknown != "" {
		return services.Wrap(services.ErrValidation, "rename", "pattern", fmt.Sprintf("unknown token {%s}", unknown), nil)
	}
	return nil
}

// Preview returns "source -> destination" lines for a dry run.
func (p *Plan) Preview() []string {
	lines := make([]string, 0, len(p.Pairs))
	for _, pair := range p.Pairs {
		if pair.Err != nil {
			lines = append(lines, fmt.Sprintf("%s -> error: %v", pair.Item.Source, pair.Err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s -> %s", pair.Item.Source, pair.Destination))
	}
	return lines
}
