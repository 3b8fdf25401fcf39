package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify devteam configuration.

Without arguments, displays the effective configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), stores the value in the user config file.

Configuration is stored at ~/.config/devteam/config.yaml
Project-specific overrides can be placed in .devteam.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			displayAllConfig(out, cfg)
			return nil
		case 1:
			value, err := cfg.Lookup(strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		default:
			return setConfigKey(out, strings.ToLower(args[0]), args[1])
		}
	},
}

// displayAllConfig prints every effective setting and where config is read from.
func displayAllConfig(out io.Writer, c *config.Config) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, s := range c.Settings() {
		value := s.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "%s\t%s\n", s.Key, value)
	}
	w.Flush()

	fmt.Fprintf(out, "\nuser config:    %s\n", config.GetUserConfigPath())
	if p := config.GetProjectConfigPath(); p != "" {
		fmt.Fprintf(out, "project config: %s\n", p)
	}
}

// setConfigKey stores a value in the user config file.
func setConfigKey(out io.Writer, key, value string) error {
	if strings.HasSuffix(key, ".api_key") {
		provider := config.Provider(strings.TrimSuffix(key, ".api_key"))
		if err := config.ValidateAPIKey(provider, value); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	if err := config.SetUserValue(key, value); err != nil {
		return err
	}

	display := value
	if strings.HasSuffix(key, ".api_key") {
		display = config.MaskAPIKey(value)
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, display)
	return nil
}
