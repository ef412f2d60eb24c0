package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tpodg/domainctl/internal/macro"
	"github.com/tpodg/domainctl/internal/macro/catalog"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run <macro>...",
	Short: "Run one or more macros against the domain",
	Long: `Build the named macros from the configuration and run their asadmin
commands in order. Execution stops at the first failing command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domainApp := getApp(cmd)
		c, err := domainApp.Catalog()
		if err != nil {
			return err
		}
		return runMacros(cmd.Context(), domainApp.Logger, c, domainApp.Env(), domainApp.Executor(), args, runDryRun)
	},
}

// runMacros builds every macro before running the first one so that a
// configuration error never leaves the domain half administered.
func runMacros(ctx context.Context, logger *slog.Logger, c *catalog.Catalog, env catalog.Env, exec macro.Executor, names []string, dryRun bool) error {
	macros := make([]*macro.Macro, 0, len(names))
	for _, name := range names {
		m, err := c.Build(ctx, name, env)
		if err != nil {
			return err
		}
		macros = append(macros, m)
	}

	for i, m := range macros {
		name := names[i]
		if dryRun {
			for j, step := range m.Steps() {
				logger.Info("Planned step", "macro", name, "step", j+1, "description", step.Description())
			}
			continue
		}

		logger.Info("Running macro", "macro", name, "domain", m.Host(), "local", m.IsLocalDomain())
		if err := m.Execute(ctx, exec); err != nil {
			logger.Error("Macro failed", "macro", name, "error", err)
			return fmt.Errorf("macro %s: %w", name, err)
		}
		logger.Info("Macro completed successfully", "macro", name)
	}
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the steps of each macro without running them")
	rootCmd.AddCommand(runCmd)
}
