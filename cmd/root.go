package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shellpipe",
	Short: "Run external command pipelines",
	Long: `Runs external programs chained stdout-to-stdin like a shell pipe,
without interpreting shell grammar. Command lines are tokenized with
quoting, escapes, $VAR/${VAR} expansion and ~ at word start.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
