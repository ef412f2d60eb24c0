package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tpodg/domainctl/internal/macro/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available macros",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getApp(cmd).Catalog()
		if err != nil {
			return err
		}
		return printCatalog(cmd.OutOrStdout(), c)
	},
}

func printCatalog(w io.Writer, c *catalog.Catalog) error {
	for _, spec := range c.Specs() {
		if _, err := fmt.Fprintf(w, "%-12s %s\n", spec.Name, spec.Summary); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
}
