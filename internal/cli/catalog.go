package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"athleteportal/internal/style"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the tier categories and their capability bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := root.policy()
			if err != nil {
				return err
			}
			t := style.Table("CATEGORY", "MATCHES", "BUNDLE", "REPORTS")
			for _, c := range policy.Categories() {
				reports := "-"
				if c.SuppressesReports {
					reports = "suppressed"
				}
				t.Row(c.Name, strings.Join(c.Substrings, ", "), dash(joinCapabilities(c.Bundle)), reports)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, t.Render())
			fmt.Fprintln(w, style.Dim.Render("reports and advanced_metrics follow physical_advanced unless a suppressing category matched"))
			return nil
		},
	}
}
