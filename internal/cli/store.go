package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/gnssget/pkg/config"
	"github.com/glorpus-work/gnssget/pkg/product"
	"github.com/glorpus-work/gnssget/pkg/store"
)

// NewStoreCmd creates the store command and its subcommands.
func NewStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and maintain the local product tree",
	}

	cmd.AddCommand(
		newStoreInfoCmd(),
		newStoreCleanCmd(),
		newStoreLegacyCmd(),
	)

	return cmd
}

func newStoreManager(cfg *config.Config) *store.DefaultManager {
	return store.NewManager(cfg.Settings.OutputDir, cfg.Settings.TempDir)
}

func newStoreInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show product directory usage and failure log summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dirs := make(map[product.Type]string)
			for _, t := range product.Types() {
				p, _ := cfg.Product(t)
				dirs[t] = p.Dir
			}

			info, err := newStoreManager(cfg).GetInfo(dirs)
			if err != nil {
				return fmt.Errorf("failed to get store info: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), store.FormatInfo(info))
			return nil
		},
	}
}

func newStoreCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove failure logs from the temp directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			result, err := newStoreManager(cfg).CleanLogs()
			if err != nil {
				return fmt.Errorf("failed to clean failure logs: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d failure logs\n", result.Files)
			return nil
		},
	}
}

func newStoreLegacyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legacy-names PRODUCT",
		Short: "Rename long-format orbits or ionosphere maps to legacy names",
		Long: `Rename decompressed long-format files of PRODUCT (sp3 or ionex) in the
configured product directory to their legacy short names. Files whose legacy
name already exists are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := product.ParseType(args[0])
			if err != nil {
				return err
			}
			if t != product.SP3 && t != product.IONEX {
				return fmt.Errorf("%s has no legacy names", t)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, _ := cfg.Product(t)

			renames, err := newStoreManager(cfg).RenameLegacy(filepath.Join(cfg.Settings.OutputDir, p.Dir))
			for _, r := range renames {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", filepath.Base(r.From), filepath.Base(r.To))
			}
			return err
		},
	}
}
