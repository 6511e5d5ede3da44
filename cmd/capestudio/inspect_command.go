package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"capestudio/internal/packager"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var showKeys bool

	cmd := &cobra.Command{
		Use:   "inspect <archive.zip>",
		Short: "Decrypt a built archive and verify its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inspection, err := packager.Inspect(args[0], cfg.Package.ContentKey)
			if err != nil {
				return err
			}
			if !showKeys {
				for i := range inspection.Entries {
					if inspection.Entries[i].Key != "" {
						inspection.Entries[i].Key = "********"
					}
				}
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, inspection)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pack ID:       %s\n", inspection.PackID)
			fmt.Fprintf(out, "Manifest UUID: %s\n", inspection.ManifestUUID)
			fmt.Fprintf(out, "Members:       %d\n\n", len(inspection.Members))

			rows := make([][]string, 0, len(inspection.Entries))
			for _, entry := range inspection.Entries {
				rows = append(rows, []string{entry.Path, yesNo(entry.IsEncrypted()), entry.Key})
			}
			fmt.Fprint(out, renderTable([]string{"Path", "Encrypted", "Key"}, rows, nil))

			if !inspection.SignatureValid {
				printFail(out, "manifest signature does not match")
				return fmt.Errorf("signature check failed for %s", args[0])
			}
			if inspection.PackID != inspection.ManifestUUID {
				printFail(out, "envelope pack id differs from manifest uuid")
				return fmt.Errorf("pack id mismatch in %s", args[0])
			}
			printOK(out, "signature valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&showKeys, "keys", false, "Print per-file keys")
	return cmd
}
