// Package cli implements portalctl, the operator tool for rosters and tier
// policies. It shares the server's orchestrators and sqlite cache, so a
// roster imported here is what the server serves after a reload.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"athleteportal/internal/config"
	"athleteportal/internal/domain/entitlement"
)

// rootOptions are the flags every subcommand can see.
type rootOptions struct {
	policyFile  string
	adminEmails []string
	verbose     bool
}

// NewRootCmd builds the portalctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "portalctl",
		Short: "Inspect and load athlete rosters",
		Long: `portalctl resolves athlete entitlements, imports roster CSVs into the
portal's sqlite cache and prints the tier catalog.

Examples:
  portalctl resolve --csv roster.csv
  portalctl resolve --db portal.db --key riley@club.test --json
  portalctl import --csv roster.csv --db portal.db --namespace spring
  portalctl catalog --policy tiers.toml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.policyFile, "policy", "", "TOML tier policy (default: built-in categories)")
	pf.StringSliceVar(&opts.adminEmails, "admin-email", nil, "Email that always matches the top category (repeatable)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log orchestrator events to stderr")

	cmd.AddCommand(
		newResolveCmd(opts),
		newImportCmd(),
		newCatalogCmd(opts),
		newNamespacesCmd(),
	)
	return cmd
}

// policy resolves the tier policy the same way the server does.
func (o *rootOptions) policy() (*entitlement.Policy, error) {
	if o.policyFile != "" {
		return config.LoadPolicy(o.policyFile, o.adminEmails...)
	}
	if len(o.adminEmails) > 0 {
		return entitlement.NewPolicy(entitlement.DefaultCategories(), o.adminEmails...), nil
	}
	return entitlement.DefaultPolicy(), nil
}
