package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trip-itinerary-ai/internal/infra/api"
)

// newTokenCmd mints a bearer token for local testing against the API.
func newTokenCmd(f *rootFlags) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			cfg, _, err := loadConfig(f)
			if err != nil {
				return err
			}
			tok, err := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Mint(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to put in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
