package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/rtgscope/internal/auth"
	"github.com/emiliopalmerini/rtgscope/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the experiments API",
	Long: `Sign a bearer token with RTGSCOPE_SECRET_KEY.

Examples:
  rtgscope token --sub alice --role admin           # Never expires
  rtgscope token --sub bob --role student --ttl 24h`,
	RunE: runToken,
}

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "Token subject (username)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleStudent, "Role: admin or student")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Lifetime; 0 means no expiry")
	_ = tokenCmd.MarkFlagRequired("sub")
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenRole != auth.RoleAdmin && tokenRole != auth.RoleStudent {
		return fmt.Errorf("invalid role %q: must be %s or %s", tokenRole, auth.RoleAdmin, auth.RoleStudent)
	}

	cfg, err := config.LoadAuth()
	if err != nil {
		return err
	}

	token, err := auth.NewAuthenticator(cfg.SecretKey).Issue(tokenSubject, tokenRole, tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
