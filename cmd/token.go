package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/config"
	v1 "github.com/shenikar/guardian_response/internal/handler/http/v1"
	"github.com/spf13/cobra"
)

var (
	tokenOfficer string
	tokenTTL     time.Duration
)

// tokenCmd выпускает токен сотрудника для локального запуска
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a responder JWT for an officer ID",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		id, err := uuid.Parse(tokenOfficer)
		if err != nil {
			return fmt.Errorf("invalid --officer: %w", err)
		}
		token, err := v1.IssueResponderToken([]byte(cfg.JWTSecret), id, tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOfficer, "officer", "", "officer ID (uuid)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("officer")
}
