package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/gnssget/internal/logger"
	"github.com/glorpus-work/gnssget/pkg/config"
	"github.com/glorpus-work/gnssget/pkg/errors"
	"github.com/glorpus-work/gnssget/pkg/product"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View and modify the settings file. show reflects global flag overrides;
get, set and init work on the stored file only.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show effective settings and product sources",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				printConfig(cmd.OutOrStdout(), cfg)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print one stored setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadStoredConfig()
				if err != nil {
					return err
				}
				value, err := cfg.GetValue(args[0])
				if err != nil {
					return fmt.Errorf("failed to get configuration value: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change one stored setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return setStoredValue(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file location",
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), getConfigPath())
				return nil
			},
		},
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default archives",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := getConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w at %s (use --force to overwrite)", errors.ErrConfigFileExists, path)
			}
			if err := config.DefaultConfig().SaveConfig(path); err != nil {
				return fmt.Errorf("failed to save default configuration: %w", err)
			}
			logger.Success("Configuration file created", logger.Fields{"path": path})
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")
	return cmd
}

// loadStoredConfig reads the settings file without applying flag overrides,
// so that set never persists a one-off --output-dir or --parallel.
func loadStoredConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func setStoredValue(key, value string) error {
	cfg, err := loadStoredConfig()
	if err != nil {
		return err
	}
	if err := cfg.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set configuration value: %w", err)
	}

	path := getConfigPath()
	if err := cfg.SaveConfig(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	logger.Success("Configuration updated", logger.Fields{"key": key, "value": value, "path": path})
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	settings := cfg.ToMap()
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SETTING\tVALUE")
	for _, key := range keys {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", key, settings[key])
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintln(w, "\nProducts:")
	tw = tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PRODUCT\tDIR\tLOG\tAGENCIES\tMIRRORS")
	for _, t := range product.Types() {
		p, _ := cfg.Product(t)
		agencies := strings.Join(p.Agencies, ",")
		if agencies == "" {
			agencies = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t, p.Dir, p.LogFile, agencies, strings.Join(p.Mirrors, " "))
	}
	_ = tw.Flush()

	if len(cfg.Hooks) > 0 {
		names := make([]string, 0, len(cfg.Hooks))
		for name := range cfg.Hooks {
			names = append(names, name)
		}
		slices.Sort(names)
		_, _ = fmt.Fprintf(w, "\nInline hooks: %s\n", strings.Join(names, ", "))
	}
}
