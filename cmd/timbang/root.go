package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/kiriman-ayam/internal/config"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/api/riwayat"
	"github.com/kirillkom/kiriman-ayam/internal/observability/logging"
)

// cli holds what every subcommand shares once PersistentPreRunE has run.
type cli struct {
	verbose bool
	apiURL  string

	cfg    config.Config
	client *riwayat.Client
	api    *riwayat.OfflineFallback
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "timbang",
		Short: "Operator client for poultry shipment weighing",
		Long: `timbang records chicken weights per shipment and browses the submitted history.

Readings are kept on disk while entering, exported to Excel when finished and sent to
the storage service. Without the service the shipment list falls back to the built-in
catalog and finished batches are only exported locally.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return c.setup() },
		PersistentPostRun: func(*cobra.Command, []string) { c.close() },
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "storage service base URL (default $CLIENT_API_URL)")

	root.AddCommand(
		newInputCmd(c),
		newRiwayatCmd(c),
		newKirimanCmd(c),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.ClientAPIURL = c.apiURL
	}
	c.cfg = cfg

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "timbang", level))

	c.client = riwayat.New(cfg.ClientAPIURL, cfg.ClientTimeout, nil)
	c.api = riwayat.NewOfflineFallback(c.client)
	slog.Debug("client_configured", "api_url", cfg.ClientAPIURL, "timeout", cfg.ClientTimeout.String())
	return nil
}

func (c *cli) close() {
	if c.client != nil {
		c.client.Close()
	}
}

// warnOffline tells the operator that data came from the offline fallback.
func (c *cli) warnOffline(cmd *cobra.Command) {
	if c.api.Offline() || c.client.Offline() {
		fmt.Fprintf(cmd.ErrOrStderr(), "peringatan: server %s tidak terjangkau, mode offline\n", c.cfg.ClientAPIURL)
	}
}
