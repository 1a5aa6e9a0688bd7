package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate profiles, filtered by name or email",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		result, err := newAPIClientFromFlags().Dashboard(cmd.Context(), filter, page, pageSize)
		if err != nil {
			return err
		}
		renderDashboard(cmd.OutOrStdout(), result)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Show the trait scores of one candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := newAPIClientFromFlags().Profile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		renderProfile(cmd.OutOrStdout(), profile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)

	listCmd.Flags().StringP("filter", "f", "", "case-insensitive substring of name or email")
	listCmd.Flags().IntP("page", "p", 0, "zero-based page number")
	listCmd.Flags().IntP("page-size", "s", 20, "rows per page")
}
