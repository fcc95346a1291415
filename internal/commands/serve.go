package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/model"
	"github.com/schoolbank/passbook/internal/server"
	"github.com/schoolbank/passbook/internal/session"
)

func newServeCommand(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, rt *runtime) error {
			verifier, err := server.NewVerifier(rt.cfg.Server.JWTSecret, rt.cfg.Server.JWTIssuer)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = rt.cfg.Server.Addr
			}
			srv := server.New(rt.svc, verifier, rt.money, rt.log)
			return srv.ListenAndServe(cmd.Context(), addr)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newTokenCommand(opts *options) *cobra.Command {
	var role, account string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token (admin)",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			verifier, err := server.NewVerifier(rt.cfg.Server.JWTSecret, rt.cfg.Server.JWTIssuer)
			if err != nil {
				return err
			}

			var sess session.Session
			switch model.Role(role) {
			case model.RoleAdmin:
				sess = session.Admin()
			case model.RoleUser:
				if _, err := rt.svc.Balance(cmd.Context(), account); err != nil {
					return err
				}
				if sess, err = session.User(account); err != nil {
					return err
				}
			default:
				return fmt.Errorf("--role must be admin or user, got %q", role)
			}

			tok, err := verifier.Issue(sess, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		}),
	}
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "admin or user")
	cmd.Flags().StringVar(&account, "account", "", "account number for a user token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
