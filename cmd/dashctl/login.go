package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var flagPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email-or-username>",
	Short: "Sign in and store the session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := flagPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimRight(line, "\r\n")
		}

		result, err := apiClient().Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := saveToken(result.Token); err != nil {
			return fmt.Errorf("login succeeded but the token could not be stored: %w", err)
		}
		fmt.Println("Signed in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearToken(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
