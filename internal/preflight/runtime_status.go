package preflight

import (
	"context"
	"fmt"
	"os"

	"imgutil/internal/config"
	"imgutil/internal/history"
)

// CheckHistoryFromConfig reports whether the run journal opens cleanly and
// how many runs it holds.
func CheckHistoryFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "History"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.History.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	path := cfg.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: "No runs recorded yet"}
	}

	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	total := 0
	for _, count := range stats {
		total += count
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d runs in %s", total, path)}
}
