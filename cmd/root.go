package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"theme-sync/internal/config"
	"theme-sync/internal/notify"
	"theme-sync/internal/shopify"
	"theme-sync/internal/syncdata"
	"theme-sync/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dryRun bool

var rootCmd = &cobra.Command{
	Use:   "theme-sync",
	Short: "Shopify theme sync tool",
	Long: `A CLI tool that keeps a local theme directory in sync with the Shopify
theme-asset API. Supports one-shot upload/download/delete/sync commands and a
watch mode that pushes filesystem changes through a rate-limited queue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config file",
	Long:  `Generate a theme-sync.yaml config file in the current directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.ConfigExists() {
			util.Default.Println("Config file already exists.")
			return nil
		}

		store, err := (&promptui.Prompt{
			Label: "Store (e.g. example.myshopify.com)",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("store cannot be empty")
				}
				return nil
			},
		}).Run()
		if err != nil {
			return err
		}

		apiKey, err := (&promptui.Prompt{Label: "API key"}).Run()
		if err != nil {
			return err
		}

		password, err := (&promptui.Prompt{Label: "API password", Mask: '*'}).Run()
		if err != nil {
			return err
		}

		themeID, err := (&promptui.Prompt{Label: "Theme id (empty for the legacy unscoped collection)"}).Run()
		if err != nil {
			return err
		}

		console := true
		cfg := config.Config{
			Store:       strings.TrimSpace(store),
			APIKey:      strings.TrimSpace(apiKey),
			Password:    strings.TrimSpace(password),
			ThemeID:     strings.TrimSpace(themeID),
			RateLimitMS: config.DefaultRateLimitDelayMS,
			Notifications: config.Notifications{
				Console: &console,
				Desktop: false,
			},
		}

		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("error generating config: %v", err)
		}
		if err := os.WriteFile(config.ConfigFileName, data, 0644); err != nil {
			return fmt.Errorf("error writing %s: %v", config.ConfigFileName, err)
		}

		util.Default.Printf("Created %s\n", config.GetConfigPath())
		return nil
	},
}

// buildRunner loads the config and assembles the engine stack shared by the
// one-shot commands.
func buildRunner(opts syncdata.Options) (*syncdata.Runner, error) {
	cfg, err := config.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	base, err := cfg.AbsBasePath()
	if err != nil {
		return nil, err
	}
	keys, err := shopify.NewKeyMapper(base)
	if err != nil {
		return nil, err
	}
	client := shopify.NewClient(cfg, keys)
	notifier := notify.New(cfg.Notifications)
	return syncdata.NewRunner(client, notifier, opts), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report downloads without writing files")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(watchCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// ExecuteContext allows running the root command with a supplied context for cancellation.
func ExecuteContext(ctx context.Context) error {
	rootCmd.SetContext(ctx)
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}
