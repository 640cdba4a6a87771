package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/metamodel"
	"github.com/matzehuels/graphwire/pkg/model"
)

// schemaCommand creates the schema command with its subcommands.
func (c *CLI) schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Check and print package definitions",
	}
	cmd.AddCommand(c.schemaCheckCommand())
	cmd.AddCommand(c.schemaShowCommand())
	return cmd
}

func (c *CLI) schemaCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <definition>...",
		Short: "Build package definitions together and list their classes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := metamodel.LoadRegistry(args...)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			var rows [][]string
			for _, p := range reg.Packages() {
				for _, cl := range p.Classifiers() {
					class, ok := cl.(*model.Class)
					if !ok {
						continue
					}
					rows = append(rows, []string{
						p.Name(),
						classLabel(class),
						strconv.Itoa(len(class.Features())),
						supertypes(class),
					})
				}
				printSuccess("%s %s", p.Name(), StyleDim.Render(p.NsURI()))
			}
			if len(rows) > 0 {
				fmt.Println(renderTable([]string{"Package", "Class", "Features", "Extends"}, rows, 2))
			}
			return nil
		},
	}
}

func (c *CLI) schemaShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <definition>",
		Short: "Print a package definition in normalized form",
		Long: `Build a package definition and print it back, optionally converting
between YAML and TOML. Defaults equal to the type's default are dropped.`,
		Example: `  graphwire schema show library.yaml --format toml > library.toml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := metamodel.Load(args[0])
			if err != nil {
				return err
			}
			out := metamodel.FormatYAML
			if format != "" {
				out = metamodel.Format(strings.ToLower(format))
			} else if f, err := metamodel.FormatOf(args[0]); err == nil {
				out = f
			}
			data, err := metamodel.Marshal(metamodel.FromPackage(p), out)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format: yaml or toml (default: input format)")
	return cmd
}

func classLabel(c *model.Class) string {
	if c.Abstract() {
		return c.Name() + StyleDim.Render(" (abstract)")
	}
	return c.Name()
}

func supertypes(c *model.Class) string {
	names := make([]string, len(c.SuperTypes()))
	for i, s := range c.SuperTypes() {
		names[i] = s.Name()
	}
	return strings.Join(names, ", ")
}
