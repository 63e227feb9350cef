package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultferry/internal/migrate"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Announce a key and import the sealed vault sent to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			imp, err := migrate.NewImporter(migrate.ImporterConfig{
				Transport: wire.Transport,
				Store:     wire.Store,
				Timeout:   wire.Timeout,
				Logger:    wire.Logger,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Announcing and waiting for the sealed vault (timeout %s)...\n", wire.Timeout)
			fmt.Println("Run 'vaultferry export' on the source device now.")
			result, err := imp.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Announcement fingerprint: %s\n", result.Fingerprint)
			fmt.Printf("Imported %d credential(s):\n", len(result.Credentials))
			renderCredentials(result.Credentials)
			return nil
		},
	}
	return cmd
}
