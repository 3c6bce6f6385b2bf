package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mindmap-backend/pkg/auth"
)

func tokenCmd() *cobra.Command {
	var (
		owner  string
		email  string
		roles  string
		issuer string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token for the session API",
		Long:  "Signs an HS256 token with JWT_SECRET. The subject becomes the map owner.",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			generator, err := auth.NewJWTGenerator(secret, issuer, ttl)
			if err != nil {
				return err
			}
			var roleList []string
			for _, role := range strings.Split(roles, ",") {
				if role = strings.TrimSpace(role); role != "" {
					roleList = append(roleList, role)
				}
			}
			token, err := generator.GenerateToken(owner, email, roleList)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&roles, "roles", "editor", "Comma separated roles")
	cmd.Flags().StringVar(&issuer, "issuer", "mindmap-auth", "Token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
