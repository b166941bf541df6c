// Package commands defines all Cobra CLI commands for the lectern binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern-go/internal/audit"
	"github.com/lectern-ai/lectern-go/internal/config"
	"github.com/lectern-ai/lectern-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lectern",
		Short: "Lectern — an AI assistant for course materials",
		Long: `Lectern answers questions about a corpus of course documents.

Documents are chunked, embedded, and indexed into a vector store; at query
time the assistant searches the indexed material with retrieval tools and
composes an answer with the sources it consulted. Conversations keep a
sliding window of recent exchanges.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.lectern/config.yaml).
See 'lectern --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A .env file in the working directory seeds missing env vars.
			// Already-set vars always win; a missing file is not an error.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.lectern/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewCoursesCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewVersionCmd(),
	)

	return root
}
