package cmd

import (
	"theme-sync/internal/config"
	"theme-sync/internal/shopify"
	"theme-sync/internal/util"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Display the list of available themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidateConfig()
		if err != nil {
			return err
		}
		base, err := cfg.AbsBasePath()
		if err != nil {
			return err
		}
		keys, err := shopify.NewKeyMapper(base)
		if err != nil {
			return err
		}
		client := shopify.NewClient(cfg, keys)

		themes, err := client.Themes(cmd.Context())
		if err != nil {
			return err
		}

		for _, t := range themes {
			line := ""
			if t.Role == "main" {
				line = color.GreenString("%d\t%s\t%s (published)", t.ID, t.Name, t.Role)
			} else {
				line = color.WhiteString("%d\t%s\t%s", t.ID, t.Name, t.Role)
			}
			util.Default.Println(line)
		}
		return nil
	},
}
