package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphwire/pkg/render"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags    codecFlags
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Draw a document as DOT, SVG, PDF or PNG",
		Long: `Draw the objects of a document and the references between them.

Containment is drawn with solid edges and cross references with dashed ones.
Proxies and objects in other documents appear as dashed nodes. The output
format follows the extension of --output; without it DOT is printed.
PDF and PNG output require rsvg-convert (librsvg).`,
		Example: `  graphwire render library.json -s library.yaml -o library.svg
  graphwire render library.json -s library.yaml --detailed | dot -Tpng > library.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format := render.FormatDOT
			if output != "" && output != "-" {
				f, err := render.FormatOf(output)
				if err != nil {
					return err
				}
				format = f
			}

			doc, err := c.load(ctx, args[0], flags)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			data, err := render.Render(ctx, doc.res, format, render.Options{Detailed: detailed})
			if err != nil {
				return err
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}
			if output != "" && output != "-" {
				prog.done("Rendered", "format", format)
				printFile(output)
			}
			return nil
		},
	}

	flags.registerRead(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file: .dot, .gv, .svg, .pdf or .png (default DOT on stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show attribute values in nodes")
	return cmd
}
