package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphwire/pkg/buildinfo"
	"github.com/matzehuels/graphwire/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the persistent pre-run loads the configuration
// file, applies --verbose to the logger, attaches the logger to the command
// context and routes codec and store events to debug logs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "graphwire reads and writes object graphs as compact JSON documents",
		Long: `graphwire decodes, inspects, converts and draws object graph documents.

Documents are decoded with package definitions loaded from YAML or TOML
schema files (--schema, or "schemas" in the config file).`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg

			hooks := &logHooks{logger: c.Logger}
			observability.SetCodecHooks(hooks)
			observability.SetStoreHooks(hooks)

			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/graphwire/config.toml)")

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}
