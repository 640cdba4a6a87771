package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphwire/pkg/errors"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var flags codecFlags

	cmd := &cobra.Command{
		Use:   "validate <document>...",
		Short: "Decode documents and report failures",
		Long: `Decode each document with the given package definitions. Structural
errors fail the document; recoverable value errors are reported as warnings.`,
		Example: `  graphwire validate -s library.yaml data/*.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				doc, err := c.load(cmd.Context(), path, flags)
				if err != nil {
					failed++
					code := errors.GetCode(err)
					if code == "" {
						printError("%v", err)
						continue
					}
					printError("%s: %s", path, errors.UserMessage(err))
					printDetail("%s", code)
					continue
				}
				stats := doc.result.Stats
				printSuccess("%s %s", path, StyleDim.Render(fmt.Sprintf("(%d objects, %d proxies)", stats.Objects, stats.Proxies)))
				if stats.Recovered > 0 {
					printWarning("%s: %d malformed values replaced by defaults", path, stats.Recovered)
				}
			}
			if len(args) > 1 {
				printInfo("%s of %d documents valid", StyleNumber.Render(strconv.Itoa(len(args)-failed)), len(args))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(args))
			}
			return nil
		},
	}

	flags.registerRead(cmd)
	return cmd
}
