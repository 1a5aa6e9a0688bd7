package main

import (
	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show the average of each trait across all candidates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, err := newAPIClientFromFlags().Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		renderSnapshot(cmd.OutOrStdout(), snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}
