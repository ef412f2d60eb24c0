package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tpodg/domainctl/internal/app"
	"github.com/tpodg/domainctl/internal/config"
)

type contextKey string

const appKey contextKey = "app"

var rootCmd = &cobra.Command{
	Use:   "domainctl",
	Short: "domainctl runs asadmin macros against an application server domain",
	Long: `domainctl automates administration of a GlassFish domain by running
ordered groups of asadmin commands (macros) such as starting the domain,
creating its resources and deploying applications.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		domainApp := app.New(cfg, app.Options{Verbose: verbose, Output: cmd.ErrOrStderr()})
		ctx := context.WithValue(cmd.Context(), appKey, domainApp)
		cmd.SetContext(ctx)

		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", fmt.Sprintf("config file (default is $HOME/%s)", config.DefaultConfigFileName))
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log asadmin command lines and output")
}

func getApp(cmd *cobra.Command) *app.App {
	if a, ok := cmd.Context().Value(appKey).(*app.App); ok {
		return a
	}
	return nil
}
