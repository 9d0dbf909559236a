package cli

import (
	"context"
	"fmt"

	"github.com/inkwell/internal/app"
	"github.com/inkwell/internal/logging"
	"github.com/spf13/cobra"
)

func newReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild view, comment and rating counters from their source rows once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logging.Sync()

			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			changed, err := a.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reconciled %d posts\n", changed)
			return nil
		},
	}
}
