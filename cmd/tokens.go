package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shellpipe/shellpipe/core/shell"
)

// tokensCmd is a debugging aid for the tokenizer.
var tokensCmd = &cobra.Command{
	Use:   "tokens CMDLINE",
	Short: "Print the expanded argv for a command line",
	Long: `Tokenizes a single command line the way run does and prints one token
per line, after quoting, escape and environment expansion.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		argv, err := shell.Split(args[0])
		if err != nil {
			return err
		}
		for _, tok := range argv {
			fmt.Fprintln(cmd.OutOrStdout(), tok)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}
