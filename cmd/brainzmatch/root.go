package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sydlexius/brainzmatch/internal/version"
)

func newRootCommand() *cobra.Command {
	app := newAppContext()

	rootCmd := &cobra.Command{
		Use:           "brainzmatch",
		Short:         "Match a Discogs catalog cache against MusicBrainz and AcousticBrainz",
		Version:       version.Version + " (" + version.Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configPath := os.Getenv("BM_CONFIG_PATH")
	if configPath == "" {
		configPath = "brainzmatch.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", configPath, "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&app.envFile, "env-file", ".env", "Credentials file loaded into the environment")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newMatchCommand(app))
	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newRunsCommand(app))
	rootCmd.AddCommand(newBackupCommand(app))
	rootCmd.AddCommand(newCheckCommand(app))

	return rootCmd
}
