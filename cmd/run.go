package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shellpipe/shellpipe/core/jobfile"
	"github.com/shellpipe/shellpipe/core/pipeline"
)

var (
	runStdoutPath string
	runStderrPath string
	runInputPath  string
	runJobPath    string
	runStatuses   bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] CMDLINE...",
	Short: "Run a pipeline of external commands",
	Long: `Runs one pipeline where each positional argument is the full command
line for one stage:

  shellpipe run 'ls -ltc' 'grep main'

The final stage's stdout and stderr go to the console unless routed to
files; earlier stages' stderr always falls through to the console. The
process exits with the final stage's exit code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fsys := afero.NewOsFs()

		job := &jobfile.Job{
			Stages:     args,
			InputFile:  runInputPath,
			StdoutFile: runStdoutPath,
			StderrFile: runStderrPath,
		}
		if runJobPath != "" {
			if len(args) > 0 || runInputPath != "" || runStdoutPath != "" || runStderrPath != "" {
				return errors.New("--job cannot be combined with stage arguments or stream flags")
			}
			var err error
			job, err = jobfile.Load(fsys, runJobPath)
			if err != nil {
				return err
			}
		} else if len(args) == 0 {
			return errors.New("at least one stage command line is required")
		}

		p, files, err := job.Pending(fsys)
		if err != nil {
			return err
		}

		res, err := p.Run()
		if cerr := files.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		if runStatuses {
			printStatuses(cmd.OutOrStdout(), job.Stages, res)
		}
		if res.ExitCode != 0 {
			os.Exit(res.ExitCode)
		}
		return nil
	},
}

func printStatuses(w io.Writer, stages []string, res pipeline.Result) {
	okColor := color.New(color.FgGreen).SprintfFunc()
	badColor := color.New(color.FgRed).SprintfFunc()

	for i, status := range res.StageStatuses {
		code := pipeline.StatusExitCode(status)
		label := okColor("exit %d", code)
		if code != 0 {
			label = badColor("exit %d", code)
		}
		fmt.Fprintf(w, "[%d] %q %s (raw status %d)\n", i, stages[i], label, status)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runStdoutPath, "stdout", "", "capture the final stage's stdout to a file")
	runCmd.Flags().StringVar(&runStderrPath, "stderr", "", "capture the final stage's stderr to a file")
	runCmd.Flags().StringVar(&runInputPath, "input", "", "feed a file to the first stage's stdin")
	runCmd.Flags().StringVar(&runJobPath, "job", "", "run the pipeline described by a YAML job file")
	runCmd.Flags().BoolVar(&runStatuses, "statuses", false, "print each stage's status after the run")
}
