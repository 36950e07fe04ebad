package cmd

import (
	"fmt"

	"github.com/jagwell/jagwell/endpoint"
	"github.com/spf13/cobra"
)

func newCreateUserCommand() *cobra.Command {
	var req endpoint.CreateUserRequest
	var firstName, lastName, email string

	cmd := &cobra.Command{
		Use:     "create-user",
		Short:   "Create a user account",
		Example: "  jagwell create-user --username admin --password s3cret --role Admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("first-name") {
				req.FirstName = &firstName
			}
			if flags.Changed("last-name") {
				req.LastName = &lastName
			}
			if flags.Changed("email") {
				req.Email = &email
			}

			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			user, err := endpoint.NewUser(db, req)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d, role %s)\n", user.Username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "login name")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&req.Role, "role", "", "Admin, Doctor or Student")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
