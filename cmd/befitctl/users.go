package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/pkg"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	userPassword string
	addAsAdmin   bool
	grantAdmin   bool
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"u"},
	Short:   "Manage befit user accounts",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if userPassword == "" {
			return errors.New("--password is required")
		}

		hash, err := pkg.HashPassword(userPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		user, err := auth.NewUsersRepo(dbPool).Add(cmd.Context(), args[0], hash, adminRoles(addAsAdmin))
		if errors.Is(err, auth.ErrUserExists) {
			color.Yellow("⚠ user %s already exists", args[0])
			return err
		}
		if err != nil {
			return err
		}

		color.Green("✓ added user %s", user.Username)
		fmt.Printf("  ID: %s\n", user.ID)
		if len(user.Roles) > 0 {
			fmt.Printf("  Roles: %s\n", strings.Join(user.Roles, ", "))
		}
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := auth.NewUsersRepo(dbPool).List(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, u := range users {
			fmt.Printf("%s %-20s %s\n",
				faint.Sprint(u.CreatedAt.Format("2006-01-02")),
				u.Username,
				strings.Join(u.Roles, ","))
		}
		return nil
	},
}

var usersSetAdminCmd = &cobra.Command{
	Use:   "set-admin <username>",
	Short: "Grant or revoke the Administrator role",
	Long: `Grant or revoke the Administrator role.

Roles are copied into the login session when the user logs in, so the change
applies to sessions created afterwards: the user has to log in again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roles := adminRoles(grantAdmin)
		if err := auth.NewUsersRepo(dbPool).SetRoles(cmd.Context(), args[0], roles); err != nil {
			return err
		}
		color.Green("✓ roles of %s set to [%s]", args[0], strings.Join(roles, ","))
		color.Yellow("  takes effect on the next login of %s", args[0])
		return nil
	},
}

func init() {
	usersAddCmd.Flags().StringVarP(&userPassword, "password", "p", "", "password of the new user")
	usersAddCmd.Flags().BoolVar(&addAsAdmin, "admin", false, "grant the Administrator role")
	usersSetAdminCmd.Flags().BoolVar(&grantAdmin, "admin", true, "false revokes the role")

	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersSetAdminCmd)
}

func adminRoles(admin bool) []string {
	if admin {
		return []string{auth.RoleAdministrator}
	}
	return nil
}
