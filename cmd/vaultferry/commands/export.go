package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vaultferry/internal/domain"
	"vaultferry/internal/migrate"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Seal the local vault to an announcement and publish it",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := migrate.NewExporter(migrate.ExporterConfig{
				Transport: wire.Transport,
				Store:     wire.Store,
				Logger:    wire.Logger,
			})
			if err != nil {
				return err
			}

			result, err := exp.Run(cmd.Context())
			if errors.Is(err, domain.ErrNoArtifact) {
				return fmt.Errorf("no announcement found; run 'vaultferry import' on the destination device first (%w)", err)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Sealed %d credential(s) to key %s and published envelope %s.\n", result.Credentials, result.PeerFingerprint, result.Name)
			fmt.Println("Compare the fingerprint with the importing device before trusting the transfer.")
			return nil
		},
	}
	return cmd
}
