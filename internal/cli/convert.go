package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphwire/pkg/document"
	"github.com/matzehuels/graphwire/pkg/location"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		flags  codecFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <document>",
		Short: "Re-encode a document with another version or style",
		Long: `Decode a document and write it again with the encoding options given by
flags or the config file. References to other documents are rewritten
relative to the output location.`,
		Example: `  # Upgrade a 1.0 document and write enum values as ordinals
  graphwire convert old.json -s library.yaml --binary-enum -o new.json

  # Print the re-encoded document
  graphwire convert old.json -s library.yaml --format-version VERSION_1_0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.load(ctx, args[0], flags)
			if err != nil {
				return err
			}
			opts := doc.opts

			if output == "" || output == "-" {
				data, _, err := document.Encode(ctx, doc.res, opts)
				if err != nil {
					return err
				}
				return writeOutput(output, data)
			}

			prog := newProgress(c.Logger)
			uri, err := location.FromPath(output)
			if err != nil {
				return err
			}
			doc.res.SetURI(uri)
			result, err := document.SaveFile(ctx, output, doc.res, opts)
			if err != nil {
				return err
			}
			prog.done("Converted", "objects", result.Stats.Objects, "bytes", result.Size)
			printFile(output)
			return nil
		},
	}

	flags.registerRead(cmd)
	flags.registerWrite(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
