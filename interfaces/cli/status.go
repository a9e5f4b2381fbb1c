package cli

import (
	"fmt"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/configuration"
	"shorts-autopost/infrastructure/logger"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's count and the next pending row without uploading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApplication(cmd.Context(), &configuration.C, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer app.Close()

			status, err := app.upload.Status(cmd.Context())
			if err != nil {
				return err
			}
			logger.GetLogger().WithFields(map[string]interface{}{
				"date":        status.Date,
				"postedToday": status.PostedToday,
				"remaining":   status.RemainingToday,
				"pending":     status.Pending,
			}).Info("Queue status")

			if asJSON {
				return printJSON(cmd.OutOrStdout(), status)
			}
			printStatus(cmd, status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}

func printStatus(cmd *cobra.Command, status *model.QueueStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Date:            %s\n", status.Date)
	fmt.Fprintf(out, "Posted today:    %d of %d\n", status.PostedToday, status.DailyCap)
	fmt.Fprintf(out, "Remaining today: %d\n", status.RemainingToday)
	fmt.Fprintf(out, "Pending rows:    %d of %d\n", status.Pending, status.Total)
	if status.NextCaption != "" {
		fmt.Fprintf(out, "Next:            row %d %q\n", status.NextRow, status.NextCaption)
	}
}
