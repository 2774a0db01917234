package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/segmentform/internal/config"
	"github.com/muurk/segmentform/internal/segment"
	"github.com/muurk/segmentform/internal/ui"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the segmentform settings file",
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing settings file without asking")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// settingsPath returns --config or the default location
func settingsPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with defaults",
	Long: `Write a settings file holding the default endpoint, timeout and the
built-in schema catalog. Edit the catalog section to offer other fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath()
		if err != nil {
			return err
		}

		_, err = os.Stat(path)
		exists := err == nil
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot access %s: %w", path, err)
		}
		if exists && !forceInit && !ui.OverwriteConfigConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(), path) {
			return nil
		}

		settings := config.NewSettings()
		flags := cmd.Flags()
		if flags.Changed("endpoint") {
			settings.Endpoint = endpoint
		}
		if flags.Changed("timeout") {
			settings.TimeoutSeconds = timeout
		}
		settings.Catalog = config.CatalogFields(segment.DefaultCatalog())

		if err := settings.Validate(); err != nil {
			return err
		}
		if err := settings.Save(path); err != nil {
			return err
		}

		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Settings written",
			ui.Detail{Key: "Path", Value: path},
			ui.Detail{Key: "Endpoint", Value: settings.Endpoint},
			ui.Detail{Key: "Fields", Value: fmt.Sprintf("%d", len(settings.Catalog))},
		)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if len(settings.Catalog) == 0 {
			settings.Catalog = config.CatalogFields(segment.DefaultCatalog())
		}

		data, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
