package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"capestudio/internal/cape"
	"capestudio/internal/capestore"
	"capestudio/internal/catalog"
	"capestudio/internal/config"
	"capestudio/internal/fileutil"
)

func newCapeCommand(ctx *commandContext) *cobra.Command {
	capeCmd := &cobra.Command{
		Use:   "cape",
		Short: "Manage the cape library",
	}

	capeCmd.AddCommand(newCapeAddCommand(ctx))
	capeCmd.AddCommand(newCapeListCommand(ctx))
	capeCmd.AddCommand(newCapeShowCommand(ctx))
	capeCmd.AddCommand(newCapeSetCommand(ctx))
	capeCmd.AddCommand(newCapeTextureCommand(ctx))
	capeCmd.AddCommand(newCapeRemoveCommand(ctx))

	return capeCmd
}

type capeFields struct {
	name        string
	description string
	creator     string
	thumbnail   string
	rarity      string
}

func (f *capeFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Display name")
	cmd.Flags().StringVar(&f.description, "description", "", "Description shown in the dressing room")
	cmd.Flags().StringVar(&f.creator, "creator", "", "Creator name")
	cmd.Flags().StringVar(&f.thumbnail, "thumbnail", "", "Thumbnail image URL for the catalog entry")
	cmd.Flags().StringVar(&f.rarity, "rarity", "", "Rarity: "+strings.Join(rarityNames(), ", "))
}

// apply copies the flags the user set onto def.
func (f *capeFields) apply(cmd *cobra.Command, def *cape.Definition) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		def.Name = strings.TrimSpace(f.name)
	}
	if flags.Changed("description") {
		def.Description = f.description
	}
	if flags.Changed("creator") {
		def.CreatorName = strings.TrimSpace(f.creator)
	}
	if flags.Changed("thumbnail") {
		def.ThumbnailURL = strings.TrimSpace(f.thumbnail)
	}
	if flags.Changed("rarity") {
		rarity, err := cape.ParseRarity(f.rarity)
		if err != nil {
			return err
		}
		def.Rarity = rarity
	}
	return nil
}

func rarityNames() []string {
	values := cape.Rarities()
	names := make([]string, len(values))
	for i, r := range values {
		names[i] = string(r)
	}
	return names
}

func defaultCreator() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "capestudio"
}

func newCapeAddCommand(ctx *commandContext) *cobra.Command {
	var fields capeFields
	var texture string
	var force bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a cape with fresh identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *capestore.Store) error {
				def := cape.New(defaultCreator())
				if err := fields.apply(cmd, &def); err != nil {
					return err
				}
				if err := store.Add(cmd.Context(), def); err != nil {
					return err
				}
				if texture != "" {
					updated, err := store.ImportTexture(cmd.Context(), def.ItemID, texture, force)
					if err != nil {
						return fmt.Errorf("cape %s created but texture rejected: %w", def.ItemID, err)
					}
					def = *updated
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, def)
				}
				out := cmd.OutOrStdout()
				printOK(out, "Added %s (%s)", highlight(def.Name), def.ItemID)
				if def.TexturePath == "" {
					printHint(out, "Set a texture with capestudio cape texture %s <file.png>", def.ItemID)
				}
				return nil
			})
		},
	}

	fields.register(cmd)
	cmd.Flags().StringVar(&texture, "texture", "", "64x32 PNG texture to import")
	cmd.Flags().BoolVar(&force, "force", false, "Accept a texture with other dimensions")
	return cmd
}

func newCapeListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List capes in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *capestore.Store) error {
				defs, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if defs == nil {
						defs = []cape.Definition{}
					}
					return writeJSON(cmd, defs)
				}
				out := cmd.OutOrStdout()
				if len(defs) == 0 {
					fmt.Fprintln(out, "No capes in the library")
					printHint(out, "Run capestudio cape add --name <name> --texture <file.png>")
					return nil
				}
				rows := make([][]string, 0, len(defs))
				for _, def := range defs {
					rows = append(rows, []string{
						def.ItemID,
						def.Name,
						string(def.Rarity),
						yesNo(fileutil.IsRegularFile(def.TexturePath)),
						yesNo(fileutil.IsRegularFile(def.ArchivePath)),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Item ID", "Name", "Rarity", "Texture", "Built"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newCapeShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show one cape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *capestore.Store) error {
				def, err := lookupCape(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, def)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item ID:     %s\n", def.ItemID)
				fmt.Fprintf(out, "Piece UUID:  %s\n", def.PieceUUID)
				fmt.Fprintf(out, "Name:        %s\n", def.Name)
				fmt.Fprintf(out, "Description: %s\n", def.Description)
				fmt.Fprintf(out, "Creator:     %s\n", def.CreatorName)
				fmt.Fprintf(out, "Rarity:      %s\n", def.Rarity)
				fmt.Fprintf(out, "Thumbnail:   %s\n", def.ThumbnailURL)
				fmt.Fprintf(out, "Texture:     %s\n", def.TexturePath)
				fmt.Fprintf(out, "Archive:     %s\n", def.ArchivePath)
				return nil
			})
		},
	}
}

func newCapeSetCommand(ctx *commandContext) *cobra.Command {
	var fields capeFields

	cmd := &cobra.Command{
		Use:   "set <item-id>",
		Short: "Change cape fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *capestore.Store) error {
				def, err := lookupCape(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				if err := fields.apply(cmd, def); err != nil {
					return err
				}
				if err := store.Update(cmd.Context(), *def); err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, def)
				}
				out := cmd.OutOrStdout()
				printOK(out, "Updated %s", highlight(def.Name))
				printHint(out, "Run capestudio generate to rebuild the archive and catalog")
				return nil
			})
		},
	}

	fields.register(cmd)
	return cmd
}

func newCapeTextureCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "texture <item-id> <file.png>",
		Short: "Import a cape texture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *capestore.Store) error {
				def, err := store.ImportTexture(cmd.Context(), args[0], args[1], force)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, def)
				}
				printOK(cmd.OutOrStdout(), "Texture for %s stored at %s", highlight(def.Name), def.TexturePath)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Accept a texture with other dimensions")
	return cmd
}

func newCapeRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a cape, its archive and its catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *capestore.Store) error {
				def, err := lookupCape(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				if err := store.Remove(cmd.Context(), def.ItemID); err != nil {
					return err
				}
				if _, err := fileutil.RemoveIfExists(def.ArchivePathIn(cfg.ZipsDir())); err != nil {
					return fmt.Errorf("remove archive: %w", err)
				}

				dropped := 0
				if fileutil.IsRegularFile(cfg.Paths.CatalogPath) {
					doc, err := catalog.Load(cfg.Paths.CatalogPath)
					if err != nil {
						return err
					}
					if dropped = doc.Remove(def.ItemID); dropped > 0 {
						if err := doc.Save(cfg.Paths.CatalogPath); err != nil {
							return err
						}
					}
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{
						"item_id":         def.ItemID,
						"removed":         true,
						"catalog_removed": dropped,
						"removed_at":      time.Now().UTC().Format(time.RFC3339),
					})
				}
				printOK(cmd.OutOrStdout(), "Removed %s (%s)", highlight(def.Name), def.ItemID)
				return nil
			})
		},
	}
}

func lookupCape(ctx context.Context, store *capestore.Store, itemID string) (*cape.Definition, error) {
	def, err := store.Get(ctx, strings.TrimSpace(itemID))
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("%w: %s", capestore.ErrNotFound, itemID)
	}
	return def, nil
}

var errNoCapes = errors.New("no capes in the library")
