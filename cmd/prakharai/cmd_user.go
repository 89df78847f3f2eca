package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userSignInCmd, userSignOutCmd, userShowCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the local identity (cosmetic only)",
}

var userSignInCmd = &cobra.Command{
	Use:   "signin <name>",
	Short: "Sign in with a display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.users.Set(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Signed in as %s.\n", args[0])
		return nil
	},
}

var userSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.users.Clear(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if u := a.users.Get(); u != nil {
			fmt.Fprintln(os.Stdout, u.Name)
		} else {
			fmt.Println("Not signed in.")
		}
		return nil
	},
}
