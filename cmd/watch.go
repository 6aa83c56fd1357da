package cmd

import (
	"theme-sync/internal/config"
	"theme-sync/internal/devsync"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the theme directory and push changes as they happen",
	Long: `Watch the theme directory for file changes. Every add/change becomes an
upload and every remove/rename a delete, serialized through a single-worker
queue that pauses between API calls to respect the rate limit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidateConfig()
		if err != nil {
			return err
		}
		return devsync.Run(cmd.Context(), cfg)
	},
}
