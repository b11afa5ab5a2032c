package main

import (
	"github.com/spf13/cobra"
)

var (
	email    string
	password string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		views, _, err := setup(cmd)
		if err != nil {
			return err
		}
		return views.SignupView(cmd.Context(), email, password)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		views, sess, err := setup(cmd)
		if err != nil {
			return err
		}
		return views.LoginView(cmd.Context(), sess, email, password)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		views, sess, err := setup(cmd)
		if err != nil {
			return err
		}
		return views.LogoutView(sess)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		views, sess, err := setup(cmd)
		if err != nil {
			return err
		}
		return views.WhoAmIView(sess)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{signupCmd, loginCmd} {
		cmd.Flags().StringVar(&email, "email", "", "Account email")
		cmd.Flags().StringVar(&password, "password", "", "Account password")
		_ = cmd.MarkFlagRequired("email")
		_ = cmd.MarkFlagRequired("password")
	}
}
