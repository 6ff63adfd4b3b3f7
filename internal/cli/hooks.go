package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/gnssget/pkg/hooks"
)

// NewHooksCmd creates the hooks command with subcommands.
func NewHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Inspect hook scripts",
	}

	cmd.AddCommand(newHooksTemplateCmd(), newHooksListCmd())
	return cmd
}

func newHooksTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "template TYPE",
		Short:     "Print a starter script for a hook type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(hooks.PostPersist), string(hooks.BatchComplete)},
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType := hooks.HookType(args[0])
			if !hookType.Valid() {
				return hooks.ErrUnsupportedHookType(hookType)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hooks.HookTemplate(hookType))
			return nil
		},
	}
}

func newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List hook types and whether a script is configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			manager, err := loadHookManager(cfg)
			if err != nil {
				return err
			}
			for _, t := range hooks.HookTypes() {
				state := "none"
				if manager.HasHook(t) {
					state = "configured"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t, state)
			}
			return nil
		},
	}
}
