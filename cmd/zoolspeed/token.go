package main

import (
	"fmt"
	"time"

	authdomain "github.com/smallbiznis/zoolspeed/internal/auth/domain"
	authservice "github.com/smallbiznis/zoolspeed/internal/auth/service"
	"github.com/smallbiznis/zoolspeed/internal/clock"
	"github.com/smallbiznis/zoolspeed/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIssueTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-admin-token",
		Short: "Mint an admin API bearer token signed with AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := authdomain.ParseRole(role)
			if err != nil {
				return fmt.Errorf("invalid --role: %w", err)
			}

			svc, err := authservice.New(authservice.Params{
				Cfg:   config.Load(),
				Log:   zap.NewNop(),
				Clock: clock.System(),
			})
			if err != nil {
				return err
			}

			raw, err := svc.Issue(subject, parsed, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator identifier recorded in audit logs")
	cmd.Flags().StringVar(&role, "role", string(authdomain.RoleOperator), "admin, operator or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
