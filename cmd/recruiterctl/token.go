package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/service"
)

var tokenCmd = &cobra.Command{
	Use:   "token <recruiter>",
	Short: "Mint a recruiter access token signed with the API's JWT secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := viper.GetString("jwt-secret")
		if secret == "" {
			return errors.New("jwt secret is required (--jwt-secret or JWT_SECRET)")
		}
		token, expiresAt, err := service.NewJWTService(secret, viper.GetDuration("ttl")).Issue(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("jwt-secret", "", "HS256 secret shared with the API")
	tokenCmd.Flags().Duration("ttl", 12*time.Hour, "token lifetime")

	_ = viper.BindPFlag("jwt-secret", tokenCmd.Flags().Lookup("jwt-secret"))
	_ = viper.BindPFlag("ttl", tokenCmd.Flags().Lookup("ttl"))
	_ = viper.BindEnv("jwt-secret", "RECRUITER_JWT_SECRET", "JWT_SECRET")
}
