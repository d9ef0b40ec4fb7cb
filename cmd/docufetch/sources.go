package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/config"
	"github.com/pdiddy/docufetch/internal/report"
	"github.com/pdiddy/docufetch/internal/source"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Enable, disable, or list search sources",
	Long: `Sources toggles which databases and feeds are searched. With no flags,
or with --list, it prints every source and whether it is enabled.

  docufetch sources --enable openalex,crossref --disable scholar`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().StringSlice("enable", nil, "sources to enable")
	sourcesCmd.Flags().StringSlice("disable", nil, "sources to disable")
	sourcesCmd.Flags().Bool("list", false, "list sources after applying changes")

	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	enable, _ := cmd.Flags().GetStringSlice("enable")
	disable, _ := cmd.Flags().GetStringSlice("disable")
	list, _ := cmd.Flags().GetBool("list")

	for _, name := range enable {
		if err := config.SetSource(&cfg, name, true); err != nil {
			return err
		}
	}
	for _, name := range disable {
		if err := config.SetSource(&cfg, name, false); err != nil {
			return err
		}
	}
	if len(enable)+len(disable) > 0 {
		if err := saveConfig(); err != nil {
			return err
		}
	}

	if list || len(enable)+len(disable) == 0 {
		return printer(cmd).Sources(source.Build(cfg, nil))
	}
	return nil
}

// printer colors output unless --no-color is set or stdout is not a
// color-capable terminal.
func printer(cmd *cobra.Command) *report.Printer {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return report.New(os.Stdout, !noColor && !color.NoColor)
}
