package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vaultferry/internal/domain"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List credentials in the local vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := wire.Store.FetchCredentials(cmd.Context())
			if err != nil {
				return err
			}
			if len(creds) == 0 {
				fmt.Println("No credentials stored.")
				return nil
			}
			renderCredentials(creds)
			return nil
		},
	}
	return cmd
}

// renderCredentials prints a credential table. Private keys are never
// printed.
func renderCredentials(creds []domain.Passkey) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREDENTIAL ID\tRELYING PARTY\tUSER\tCOUNTER\tALGORITHM")
	for _, c := range creds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.CredentialID, c.RelyingPartyID, c.UserDisplayName, c.Counter, c.KeyAlgorithm)
	}
	w.Flush()
}
