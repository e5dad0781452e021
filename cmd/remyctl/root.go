package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/logger"
)

func newRootCommand() *cobra.Command {
	return newRootCommandWithConfig(config.LoadConfig)
}

func newRootCommandWithConfig(loadConfig func() (*config.Config, error)) *cobra.Command {
	var promptsFlag string
	var verbose bool

	ctx := newCommandContext(&promptsFlag, loadConfig)

	rootCmd := &cobra.Command{
		Use:           "remyctl",
		Short:         "Chef Remy command line tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.Init(os.Getenv("GIN_MODE") != "release")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&promptsFlag, "prompts", "", "Prompt file path (defaults to $PROMPTS_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(newRecipesCommand())
	rootCmd.AddCommand(newAskCommand(ctx))

	return rootCmd
}
