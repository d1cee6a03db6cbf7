package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mintsim/arena-api/internal/pkg/jwthelper"
)

var (
	tokenUserID string
	tokenEmail  string
	tokenTTL    time.Duration
)

// tokenCmd mints an access token signed with the configured key, for local development and smoke tests.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed access token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID == "" {
			return errors.New("--user is required")
		}

		conf, err := bootstrap()
		if err != nil {
			return err
		}

		token, err := jwthelper.GenerateToken([]byte(conf.Auth.JWTSigningKey), tokenUserID, tokenEmail, tokenTTL)
		if err != nil {
			return fmt.Errorf("jwthelper.GenerateToken -> %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)

		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "user id (sub claim)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}
