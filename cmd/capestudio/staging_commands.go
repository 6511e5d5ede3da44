package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"capestudio/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage build staging directories",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staging directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stagingDir := strings.TrimSpace(cfg.Paths.StagingDir)
			dirs, err := staging.ListDirectories(stagingDir)
			if err != nil {
				return fmt.Errorf("list staging directories: %w", err)
			}

			if ctx.JSONMode() {
				if dirs == nil {
					dirs = []staging.DirInfo{}
				}
				var totalSize int64
				for _, dir := range dirs {
					totalSize += dir.Size
				}
				return writeJSON(cmd, map[string]any{
					"staging_dir":      stagingDir,
					"directories":      dirs,
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No staging directories found")
				return nil
			}

			fmt.Fprintf(out, "Staging directory: %s\n\n", stagingDir)

			var totalSize int64
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				age := time.Since(dir.ModTime).Truncate(time.Minute)
				totalSize += dir.Size
				rows = append(rows, []string{dir.Name, formatDuration(age), formatBytes(dir.Size), yesNo(dir.Locked)})
			}

			fmt.Fprint(out, renderTable(
				[]string{"Item ID", "Age", "Size", "Building"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), formatBytes(totalSize))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var cleanAll bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover staging directories",
		Long: `Remove staging directories left behind by interrupted builds.

By default, only directories older than package.stale_staging_hours are
removed. Use --all to remove every directory whose build lock is free.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.fileLogger()
			if err != nil {
				return err
			}

			maxAge := time.Duration(cfg.Package.StaleStagingHours) * time.Hour
			scope := "stale"
			if cleanAll {
				maxAge = 0
				scope = "unlocked"
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, maxAge, logger)
			if ctx.JSONMode() {
				return writeStagingCleanJSON(cmd, result)
			}
			return printStagingCleanResult(cmd, result, scope)
		},
	}

	cmd.Flags().BoolVar(&cleanAll, "all", false, "Remove all staging directories not currently building")

	return cmd
}

func printStagingCleanResult(cmd *cobra.Command, result staging.CleanStaleResult, label string) error {
	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintf(out, "No %s directories to clean\n", label)
		return nil
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Removed %d %s directories, %d errors\n", len(result.Removed), label, len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return nil
	}
	fmt.Fprintf(out, "Removed %d %s directories\n", len(result.Removed), label)
	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d directories with an active build\n", len(result.Skipped))
	}
	return nil
}

func writeStagingCleanJSON(cmd *cobra.Command, result staging.CleanStaleResult) error {
	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
	}
	return writeJSON(cmd, map[string]any{
		"removed": len(result.Removed),
		"skipped": len(result.Skipped),
		"errors":  errs,
	})
}
