package cmd

import (
	"theme-sync/internal/syncdata"

	"github.com/spf13/cobra"
)

var noJSON bool

var uploadCmd = &cobra.Command{
	Use:   "upload [path]",
	Short: "Upload a single theme file, or deploy the whole theme if no path is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRunner(syncdata.Options{DryRun: dryRun, NoJSON: noJSON})
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return r.Upload(cmd.Context(), args[0])
		}
		return r.Deploy(cmd.Context())
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [path]",
	Short: "Download a single theme file, or the entire theme if no path is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRunner(syncdata.Options{DryRun: dryRun})
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return r.DownloadAsset(cmd.Context(), args[0])
		}
		return r.DownloadTheme(cmd.Context())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Remove a theme file from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRunner(syncdata.Options{})
		if err != nil {
			return err
		}
		return r.Remove(cmd.Context(), args[0])
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload local files that are new or newer than their remote copy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRunner(syncdata.Options{})
		if err != nil {
			return err
		}
		return r.Sync(cmd.Context())
	},
}

func init() {
	uploadCmd.Flags().BoolVar(&noJSON, "no-json", false, "exclude config/settings_data.json from deploy")
}
