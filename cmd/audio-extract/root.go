package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "audio-extract",
		Short: "Extract the previous day's AUDIOS-SAC recordings from Genesys Cloud",
		Long: `audio-extract selects yesterday's conversations handled by an agent in the
configured Genesys Cloud queue, submits their recordings for bulk download and
stores the resulting job, batches and audios for the transcription stages.

Sundays are not processed: a run on Monday covers Saturday.

Configuration is read from the environment, optionally overlaid on a
KEY=VALUE file passed with --config:
  DB_DRIVER, DB_DSN (or PG_HOST, PG_PORT, PG_USER, PG_PASSWORD, PG_DATABASE)
  GENESYS_CLOUD_CLIENT_ID, GENESYS_CLOUD_CLIENT_SECRET, GENESYS_QUEUE_ID
  NOTIFY_URL, EMAILS, EMAIL_MESSAGE, TIMEZONE, BATCH_SIZE

Running without a subcommand is the same as "audio-extract run".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "KEY=VALUE file read before the environment (e.g. .env)")

	cmd.AddCommand(newRunCmd(opts), newScheduleCmd(opts), newMigrateCmd(opts))
	return cmd
}
