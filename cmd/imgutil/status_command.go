package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"imgutil/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, directories, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(stdout, line)
			}
			configDetail := ctx.configPath
			configKind := statusOK
			if !ctx.configExists {
				configDetail += " (not found, using defaults)"
				configKind = statusInfo
			}
			fmt.Fprintln(stdout, renderStatusLine("Config", configKind, configDetail, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Workers", statusInfo, fmt.Sprintf("%d", cfg.Batch.Workers), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Move sources", statusInfo, yesNo(cfg.Batch.Move), colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				if result.Name == "FFmpeg" {
					continue
				}
				fmt.Fprintln(stdout, resultLine(result, result.Name == "Notifications", colorize))
			}
			fmt.Fprintln(stdout, resultLine(preflight.CheckHistoryFromConfig(cmd.Context(), cfg), true, colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(preflight.CheckSystemDeps(cmd.Context(), cfg), colorize) {
				fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}
}
