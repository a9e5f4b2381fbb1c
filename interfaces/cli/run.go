package cli

import (
	"encoding/json"
	"errors"
	"io"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/configuration"
	"shorts-autopost/infrastructure/logger"
	"shorts-autopost/infrastructure/runlock"

	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Upload at most one pending row, then exit",
		Args:  cobra.NoArgs,
		RunE:  runCommand,
	}
}

// runCommand performs one run. Every run outcome, aborted runs included, exits
// successfully; only configuration problems are returned.
func runCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := &configuration.C
	log := logger.GetLogger()

	app, err := newApplication(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		if _, ok := model.KindOf(err); ok {
			log.WithField("error", err).Error("Run aborted")
			return nil
		}
		return err
	}
	defer app.Close()

	if cfg.App.RunLockFile != "" {
		lock := runlock.NewFileLock(cfg.App.RunLockFile)
		if err := lock.Lock(0); err != nil {
			if errors.Is(err, runlock.ErrLocked) {
				log.WithField("lockFile", cfg.App.RunLockFile).Warn("Another run is in progress, skipping")
				return nil
			}
			return err
		}
		defer lock.Unlock()
	}

	result, err := app.upload.Run(ctx)
	if err != nil {
		// already logged by the use case
		log.WithField("state", result.State).Debug("Run finished without posting")
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
