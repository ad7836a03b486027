package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sandilya-stack/coach-server/coachservice"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("coach-service exited with error")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coach-service",
		Short:         "Brain-dump coaching service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return coachservice.Run()
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return coachservice.Run()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the document store schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return coachservice.Migrate()
		},
	})
	return root
}
