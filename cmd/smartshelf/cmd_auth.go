package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartshelf/shelfweb/app/models"
)

// readSecret returns flag, or the first line of stdin when fromStdin.
func readSecret(in io.Reader, flag string, fromStdin bool) (string, error) {
	if !fromStdin {
		return flag, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// smartshelf login
func newLoginCmd() *cobra.Command {
	var (
		creds     models.Credentials
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd.InOrStdin(), creds.Password, fromStdin)
			if err != nil {
				return err
			}
			creds.Password = pw

			return withClient(cmd.Context(), func(c *client) error {
				home, err := c.svc.Auth.Login(cmd.Context(), c.sess, creds)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s). Home page: %s\n", creds.Email, c.sess.Role(), home)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// smartshelf logout
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.svc.Auth.Logout(cmd.Context(), c.sess); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
				return nil
			})
		},
	}
}

// smartshelf whoami
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				out := cmd.OutOrStdout()
				if !c.sess.Authenticated() {
					fmt.Fprintln(out, "Not logged in.")
					return nil
				}
				role := models.ParseRole(c.sess.Role())
				fmt.Fprintf(out, "Role:    %s\nHome:    %s\nExpires: %s\n",
					role, role.Home(), c.sess.ExpiresAt().Format("2006-01-02 15:04"))
				return nil
			})
		},
	}
}

// smartshelf register
func newRegisterCmd() *cobra.Command {
	var (
		reg       models.Registration
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd.InOrStdin(), reg.Password, fromStdin)
			if err != nil {
				return err
			}
			reg.Password = pw

			return withClient(cmd.Context(), func(c *client) error {
				msg, err := c.svc.Auth.Register(cmd.Context(), reg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.FullName, "name", "", "full name")
	f.StringVar(&reg.Email, "email", "", "email")
	f.StringVar(&reg.Password, "password", "", "password (at least 6 characters)")
	f.BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	f.StringVar(&reg.Contact, "contact", "", "phone or other contact")
	f.StringVar(&reg.Location, "location", "", "store location")
	f.StringVar(&reg.Role, "role", "", "ADMIN, STORE_MANAGER or USER")
	return cmd
}

// smartshelf reset-password
func newResetPasswordCmd() *cobra.Command {
	var p models.PasswordReset
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Change a password given the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				msg, err := c.svc.Auth.ResetPassword(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Email, "email", "", "account email")
	f.StringVar(&p.OldPassword, "old", "", "current password")
	f.StringVar(&p.NewPassword, "new", "", "new password (at least 6 characters)")
	return cmd
}
