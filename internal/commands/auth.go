package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schoolbank/passbook/internal/session"
)

func newLoginCommand(opts *options) *cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session as admin or as an account holder",
	}

	loginCmd.AddCommand(&cobra.Command{
		Use:   "admin",
		Short: "Log in as administrator",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, rt *runtime) error {
			return rt.login(cmd, session.Admin())
		}),
	})

	loginCmd.AddCommand(&cobra.Command{
		Use:   "user <account-number>",
		Short: "Log in as the holder of one account",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, args []string, rt *runtime) error {
			sess, err := session.User(args[0])
			if err != nil {
				return err
			}
			// The account must exist before anyone can hold a session for it.
			if _, err := rt.svc.Balance(cmd.Context(), sess.AccountNumber); err != nil {
				return fmt.Errorf("logging in: %w", err)
			}
			return rt.login(cmd, sess)
		}),
	})

	return loginCmd
}

func (rt *runtime) login(cmd *cobra.Command, sess session.Session) error {
	if err := session.Save(rt.root, sess); err != nil {
		return err
	}
	rt.session = sess
	rt.log.Debug("session started", zap.String("role", string(sess.Role)))
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess)
	return nil
}

func newLogoutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := opts.rootDir()
			if err != nil {
				return err
			}
			if err := session.Clear(root); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := opts.rootDir()
			if err != nil {
				return err
			}
			sess, err := session.Load(root)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess)
			return nil
		},
	}
}
