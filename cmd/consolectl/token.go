package main

import (
	"fmt"
	"os"
	"time"

	"backoffice/utils"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin JWT signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := utils.GenerateAdminToken(os.Getenv("JWT_SECRET"), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "consolectl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
