package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"athleteportal/internal/adapters/storage"
	athleteStore "athleteportal/internal/adapters/storage/athlete"
	"athleteportal/internal/style"
)

func newNamespacesCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "namespaces",
		Short: "List cached roster namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := storage.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := athleteStore.NewSQLiteStore(db).Namespaces(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(w, style.Dim.Render("No rosters imported yet."))
				return nil
			}
			t := style.Table("NAMESPACE", "ATHLETES", "UPDATED")
			for _, ns := range list {
				t.Row(ns.Namespace, strconv.Itoa(ns.Count), ns.UpdatedAt)
			}
			fmt.Fprintln(w, t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "portal.db", "Portal sqlite database")
	return cmd
}
