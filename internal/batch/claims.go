package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"imgutil/internal/services"
)

// Claims maps each output path to the item that owns it. Paths compare
// case-insensitively so a batch behaves the same on case-folding filesystems.
type Claims struct {
	owners map[string]Item
}

// ClaimDestinations assigns every output path to the first item, in index
// order, that maps to it. It runs before dispatch so ownership never depends
// on which worker finishes first.
func ClaimDestinations(items []Item, destination func(Item) string) *Claims {
	c := &Claims{owners: make(map[string]Item, len(items))}
	for _, item := range items {
		key := claimKey(destination(item))
		if _, taken := c.owners[key]; !taken {
			c.owners[key] = item
		}
	}
	return c
}

// Check fails item when another item owns path.
func (c *Claims) Check(operation string, item Item, path string) error {
	if c == nil {
		return nil
	}
	owner, ok := c.owners[claimKey(path)]
	if !ok || owner.Index == item.Index {
		return nil
	}
	return services.Wrap(services.ErrValidation, operation, "plan",
		fmt.Sprintf("destination %s duplicates %s", filepath.Base(path), filepath.Base(owner.Source)), nil)
}

func claimKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
