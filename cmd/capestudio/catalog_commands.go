package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"capestudio/internal/capestore"
	"capestudio/internal/catalog"
	"capestudio/internal/config"
	"capestudio/internal/fileutil"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the served catalog document",
	}

	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogExportCommand(ctx))

	return catalogCmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the catalog document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			exists := fileutil.IsRegularFile(cfg.Paths.CatalogPath)
			doc, err := catalog.Load(cfg.Paths.CatalogPath)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"path":        cfg.Paths.CatalogPath,
					"exists":      exists,
					"ids":         doc.IDs(),
					"total_items": doc.TotalItems(),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog: %s\n", cfg.Paths.CatalogPath)
			if !exists {
				printWarn(out, "Catalog document not generated yet; the proxy passes the real page through")
				printHint(out, "Run capestudio generate")
				return nil
			}
			fmt.Fprintf(out, "Items:   %d (totalItems %d)\n", doc.Count(), doc.TotalItems())
			for _, id := range doc.IDs() {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
}

func newCatalogExportCommand(ctx *commandContext) *cobra.Command {
	var fromTemplate bool

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write the catalog document for the current library",
		Long: `Build a catalog document from the cape library and write it to path, or to
stdout when no path is given. The served catalog file is not modified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *capestore.Store) error {
				defs, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				var doc *catalog.Document
				if fromTemplate {
					doc, err = catalog.Template()
				} else {
					doc, err = catalog.Load(cfg.Paths.CatalogPath)
				}
				if err != nil {
					return err
				}
				if err := doc.Upsert(time.Now().UTC(), defs...); err != nil {
					return err
				}
				if len(args) == 0 {
					data, err := doc.Bytes()
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := doc.Save(args[0]); err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Wrote %s capes to %s", strconv.Itoa(doc.Count()), args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fromTemplate, "template", false, "Start from the empty template instead of the current document")
	return cmd
}
