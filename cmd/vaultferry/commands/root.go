package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"vaultferry/internal/app"
)

var (
	configPath string
	dbPath     string
	handoffDir string
	relayURL   string
	timeout    time.Duration
	verbose    bool

	appCfg app.Config
	wire   *app.Wire
)

// Execute runs the vaultferry CLI until the command finishes or ctx is
// cancelled.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "vaultferry",
		Short: "Move passkeys between vaults through sealed envelopes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				var err error
				path, err = app.DefaultConfigPath()
				if err != nil {
					return err
				}
			}
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("db") {
				cfg.DB = dbPath
			}
			if flags.Changed("handoff") {
				cfg.HandoffDir = handoffDir
			}
			if flags.Changed("relay") {
				cfg.Relay = relayURL
			}
			if flags.Changed("timeout") {
				cfg.Timeout = app.Duration(timeout)
			}
			if flags.Changed("verbose") {
				cfg.Verbose = verbose
			}
			if err := cfg.ApplyDefaults(); err != nil {
				return err
			}

			appCfg = cfg
			wire, err = app.NewWire(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Close()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <user config dir>/vaultferry/config.yaml)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "credential database path")
	root.PersistentFlags().StringVar(&handoffDir, "handoff", "", "shared handoff directory for the file transport")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8438); overrides the handoff directory")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "how long import waits for the sealed vault (default 5m)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(initCmd(), importCmd(), exportCmd(), listCmd(), fingerprintCmd())
	return root.ExecuteContext(ctx)
}
