package preflight

import (
	"context"

	"imgutil/internal/config"
	"imgutil/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the environment checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if cfg.Paths.LogDir != "" && cfg.Paths.LogDir != cfg.Paths.StateDir {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckNtfyTopic(cfg.Notifications.NtfyTopic))
	if cfg.Convert.Format == "avif" {
		for _, status := range CheckSystemDeps(ctx, cfg) {
			results = append(results, fromStatus(status))
		}
	}
	return results
}

func fromStatus(status deps.Status) Result {
	detail := status.Command
	if !status.Available {
		detail = status.Detail
	}
	return Result{Name: status.Name, Passed: status.Available, Detail: detail}
}
