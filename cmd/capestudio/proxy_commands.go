package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"capestudio/internal/capestore"
	"capestudio/internal/daemon"
	"capestudio/internal/fileutil"
	"capestudio/internal/intercept"
	"capestudio/internal/logging"
)

func newProxyCommand(ctx *commandContext) *cobra.Command {
	proxyCmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run the intercepting proxy",
	}

	proxyCmd.AddCommand(newProxyRunCommand(ctx))
	proxyCmd.AddCommand(newProxyCACommand(ctx))

	return proxyCmd
}

func newProxyRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Serve capes to the game client until interrupted",
		Long: `Start the intercepting proxy in the foreground. The cape set is loaded from
the library at start; send SIGHUP to reload it after running generate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if !fileutil.IsRegularFile(cfg.Paths.CatalogPath) {
				logging.WarnWithContext(logger, "catalog document not generated", "catalog_missing",
					logging.String("path", cfg.Paths.CatalogPath),
					logging.String(logging.FieldErrorHint, "run capestudio generate"),
					logging.String(logging.FieldImpact, "the real catalog page is passed through"),
				)
			}

			store, err := capestore.Open(cfg)
			if err != nil {
				logger.Error("open cape library", logging.Error(err))
				return err
			}
			d, err := daemon.New(cfg, store, logger)
			if err != nil {
				_ = store.Close()
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			for {
				select {
				case <-signalCtx.Done():
					logger.Info("capestudio proxy shutting down")
					return nil
				case <-hup:
					if _, err := d.Reload(signalCtx); err != nil {
						logging.WarnWithContext(logger, "cape reload failed", "reload_failed",
							logging.Error(err),
							logging.String(logging.FieldImpact, "the previous cape set stays active"),
						)
					}
				}
			}
		},
	}
}

func newProxyCACommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "ca",
		Short: "Print the root certificate clients must trust",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pem := intercept.DefaultCACert()
			if cfg.Proxy.CACert != "" {
				if pem, err = os.ReadFile(cfg.Proxy.CACert); err != nil {
					return fmt.Errorf("read ca certificate: %w", err)
				}
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(pem)
				return err
			}
			if err := fileutil.WriteFileAtomic(outPath, pem, 0o644); err != nil {
				return fmt.Errorf("write ca certificate: %w", err)
			}
			printOK(cmd.OutOrStdout(), "Wrote CA certificate to %s", outPath)
			printHint(cmd.OutOrStdout(), "Install it as a trusted root on the device running the game")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the certificate to a file instead of stdout")
	return cmd
}
