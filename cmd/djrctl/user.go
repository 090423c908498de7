package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}
	cmd.AddCommand(userAddCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	var (
		name     string
		role     string
		password string
	)
	cmd := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Create a user",
		Long: `Create a login account. The password comes from --password or the
DJR_USER_PASSWORD environment variable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("DJR_USER_PASSWORD")
			}
			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := auth.NewService(auth.NewRepository(pool))
			user, err := svc.CreateUser(cmd.Context(), auth.NewUser{
				Email:    args[0],
				Name:     name,
				Password: password,
				Role:     role,
			})
			var verr *shared.ValidationError
			if errors.As(err, &verr) {
				for field, msg := range verr.Fields {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
				}
				return errors.New("user not created")
			}
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", user.ID, user.Email, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", shared.RoleReadonly, "role: admin or readonly")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 8 chars)")
	return cmd
}
