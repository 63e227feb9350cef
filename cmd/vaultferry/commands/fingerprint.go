package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultferry/internal/domain"
	"vaultferry/internal/seal"
)

func fingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of the latest announcement",
		RunE: func(cmd *cobra.Command, args []string) error {
			artifact, err := wire.Transport.Latest(cmd.Context(), domain.KindOpenBox)
			if err != nil {
				return err
			}
			announcement, err := domain.DecodeOpenBox(artifact.Data)
			if err != nil {
				return err
			}
			fmt.Printf("Announcement: %s\n", artifact.Name)
			fmt.Printf("Fingerprint: %s\n", seal.Fingerprint(announcement.PublicKey))
			return nil
		},
	}
	return cmd
}
