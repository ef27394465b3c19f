// Package commands defines all Cobra CLI commands for the alfred binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/haxtheweb/alfred-go/internal/audit"
	"github.com/haxtheweb/alfred-go/internal/config"
	"github.com/haxtheweb/alfred-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "alfred",
		Short: "Alfred — course assistant for HAX course sites",
		Long: `Alfred ingests HAX course sites into a Qdrant vector store and answers
student questions about the material.

Questions are answered by one of several engines (Alfred, Robin, Catwoman,
Penguin) backed by OpenAI, Anthropic, or Ollama models. Retrieval context is
built from the ingested course content.

Configuration is read from environment variables or a YAML config file
(~/.alfred/config.yaml). See 'alfred --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
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

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.alfred/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewAskCmd(),
		NewCoursesCmd(),
		NewVersionCmd(),
	)

	return root
}
