package cli

import (
	"errors"
	"fmt"

	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/logging"
	"github.com/spf13/cobra"
)

func newAdminCommand() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage back office accounts",
	}
	admin.AddCommand(newAdminCreateCommand())
	return admin
}

func newAdminCreateCommand() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logging.Sync()

			gdb, err := db.Init(cfg.Database)
			if err != nil {
				return fmt.Errorf("init database: %w", err)
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}

			created, err := db.EnsureUser(gdb, username, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q created\n", username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q already exists\n", username)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	return cmd
}
