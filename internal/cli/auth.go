package cli

import (
	"github.com/spf13/cobra"
)

func (c *CLI) signupCommand() *cobra.Command {
	var password, confirm string
	cmd := &cobra.Command{
		Use:   "signup USERNAME",
		Short: "Register a new user",
		Long:  `Register a new user. Passwords need at least 6 characters and must be confirmed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			if err := a.Auth.SignUp(args[0], password, confirm); err != nil {
				return err
			}
			c.printf("Signup successful! Please login.\n")
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Repeat the password (required)")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("confirm")
	return cmd
}

func (c *CLI) loginCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login USERNAME",
		Short: "Log in and make USERNAME the current user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			username, err := a.Auth.Login(args[0], password)
			if err != nil {
				return err
			}
			c.printf("Welcome, %s!\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, username, err := c.session()
			if err != nil {
				return err
			}
			if err := a.Auth.Logout(username); err != nil {
				return err
			}
			c.printf("You've been logged out.\n")
			return nil
		},
	}
}

func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			username, err := a.Auth.CurrentUser()
			if err != nil {
				return err
			}
			c.printf("%s\n", username)
			return nil
		},
	}
}
