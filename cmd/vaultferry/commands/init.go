package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"vaultferry/internal/app"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				var err error
				path, err = app.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Config already exists at %s\n", path)
				return nil
			} else if !os.IsNotExist(err) {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return err
			}
			contents := fmt.Sprintf("db: %s\nhandoff_dir: %s\ntimeout: %s\n",
				appCfg.DB, appCfg.HandoffDir, time.Duration(appCfg.Timeout))
			if appCfg.Relay != "" {
				contents += fmt.Sprintf("relay: %s\n", appCfg.Relay)
			}
			if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", path)
			fmt.Printf("Database: %s\n", appCfg.DB)
			fmt.Printf("Handoff directory: %s\n", appCfg.HandoffDir)
			return nil
		},
	}
	return cmd
}
