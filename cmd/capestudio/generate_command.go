package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"capestudio/internal/cape"
	"capestudio/internal/capestore"
	"capestudio/internal/catalog"
	"capestudio/internal/config"
	"capestudio/internal/packager"
	"capestudio/internal/staging"
)

type generateReport struct {
	Built        []string          `json:"built"`
	Failed       map[string]string `json:"failed"`
	StaleRemoved int               `json:"stale_removed"`
	CatalogPath  string            `json:"catalog_path"`
	CatalogItems int               `json:"catalog_items"`
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [item-id...]",
		Short: "Build cape archives and regenerate the catalog document",
		Long: `Build the archive for every cape (or only the named ones), replacing any
previous archive, then merge the current capes into the catalog document.

A failing cape does not stop the others; the command exits non-zero when any
cape failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.fileLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *capestore.Store) error {
				all, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(all) == 0 {
					return errNoCapes
				}
				targets, err := selectCapes(all, args)
				if err != nil {
					return err
				}

				maxAge := time.Duration(cfg.Package.StaleStagingHours) * time.Hour
				stale := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, maxAge, logger)

				builder, err := packager.New(cfg, logger)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				var spin *spinner.Spinner
				if !ctx.JSONMode() {
					spin = startSpinner(out, fmt.Sprintf(" Building %d capes...", len(targets)))
				}
				results := builder.BuildAll(cmd.Context(), targets)
				stopSpinner(spin)

				report := generateReport{
					Failed:       map[string]string{},
					StaleRemoved: len(stale.Removed),
					CatalogPath:  cfg.Paths.CatalogPath,
				}
				built := make(map[string]cape.Definition, len(results))
				for _, res := range results {
					def := res.Definition
					if res.Err != nil {
						report.Failed[def.ItemID] = res.Err.Error()
						if !ctx.JSONMode() {
							printFail(out, "%s (%s): %v", def.Name, def.ItemID, res.Err)
						}
						if err := store.SetArchivePath(cmd.Context(), def.ItemID, ""); err != nil {
							return err
						}
						continue
					}
					if err := store.SetArchivePath(cmd.Context(), def.ItemID, def.ArchivePath); err != nil {
						return err
					}
					built[def.ItemID] = def
					report.Built = append(report.Built, def.ItemID)
					if !ctx.JSONMode() {
						printOK(out, "%s %s", highlight(def.Name), def.ArchivePath)
					}
				}

				current := make([]cape.Definition, 0, len(all))
				for _, def := range all {
					if b, ok := built[def.ItemID]; ok {
						def = b
					}
					current = append(current, def)
				}
				doc, err := catalog.Regenerate(cfg.Paths.CatalogPath, time.Now().UTC(), current)
				if err != nil {
					return err
				}
				report.CatalogItems = doc.Count()

				if ctx.JSONMode() {
					if err := writeJSON(cmd, report); err != nil {
						return err
					}
				} else {
					if report.StaleRemoved > 0 {
						printWarn(out, "Removed %d stale staging directories", report.StaleRemoved)
					}
					printOK(out, "Catalog %s lists %d capes", cfg.Paths.CatalogPath, report.CatalogItems)
				}

				if failed := packager.Failed(results); failed > 0 {
					return fmt.Errorf("%d of %d capes failed to build", failed, len(results))
				}
				return nil
			})
		},
	}
}

func selectCapes(all []cape.Definition, ids []string) ([]cape.Definition, error) {
	if len(ids) == 0 {
		return all, nil
	}
	set := cape.NewSet(all)
	selected := make([]cape.Definition, 0, len(ids))
	for _, id := range ids {
		def, ok := set.Find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", capestore.ErrNotFound, id)
		}
		selected = append(selected, def)
	}
	return selected, nil
}
