package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shorts-autopost/infrastructure/configuration"
	"shorts-autopost/infrastructure/logger"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configName string
	logFormat  string
	logLevel   string
}

// NewRootCommand builds the command tree. Without a subcommand it performs a run.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "shorts-autopost",
		Short: "Post the next queued reel as a YouTube Short",
		Long: `Reads the upload queue from a Google Sheet (or a CSV file), downloads the
first pending reel and uploads it to YouTube as a Short, at most DAILY_CAP
per local day.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.loadConfig()
		},
		RunE: runCommand,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(
		&opts.configName,
		"config", "c",
		"",
		`config file name without extension, searched in . ../ ../../ | example: --config=config-prod`,
	)
	rootCmd.PersistentFlags().StringVar(
		&opts.logFormat,
		"log-format",
		"",
		`log format json or text, overrides LOG_FORMAT | example: --log-format=text`,
	)
	rootCmd.PersistentFlags().StringVar(
		&opts.logLevel,
		"log-level",
		"",
		`log level, overrides LOG_LEVEL | example: --log-level=debug`,
	)

	rootCmd.AddCommand(
		newRunCommand(),
		newStatusCommand(),
		newAuthCommand(),
		newServeCommand(),
		newTokenCommand(),
	)
	return rootCmd
}

func (o *rootOptions) loadConfig() error {
	if err := configuration.LoadConfig(o.configName); err != nil {
		return err
	}
	if o.logFormat == "" && o.logLevel == "" {
		return nil
	}
	if o.logFormat != "" {
		configuration.C.Logger.Format = o.logFormat
	}
	if o.logLevel != "" {
		configuration.C.Logger.Level = o.logLevel
	}
	logger.Configure(configuration.C.Logger.Format, configuration.C.Logger.Level, configuration.C.Logger.ToFile)
	return nil
}

// Execute runs the command line until done or interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
