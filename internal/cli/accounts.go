package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAccountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List configured accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenants := a.tenants.List()
			if len(tenants) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No accounts configured in %s\n", a.tenantsFile)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tNAME\tTAG KEY\tERV VARIABLE\tFUNNEL TAGS")
			for _, t := range tenants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", t.Slug, t.DisplayName, t.TagKey, t.ERVVariable, t.FunnelTags)
			}
			return w.Flush()
		},
	}
}
