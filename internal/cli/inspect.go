package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphwire/pkg/model"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags codecFlags

	cmd := &cobra.Command{
		Use:   "inspect <document>",
		Short: "Show a document's header, statistics and classes",
		Long: `Decode a document and summarize it: format version, style flags, object
and proxy counts, content digest, and a table of objects per class.`,
		Example: `  graphwire inspect library.json -s library.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}
			stats := doc.result.Stats

			fmt.Println(StyleTitle.Render(args[0]))
			printDetail("%s", doc.res.URI())
			printKeyValue("Version", stats.Version.String())
			printKeyValue("Style", stats.Style.String())
			printKeyValue("Size", fmt.Sprintf("%d bytes", doc.result.Size))
			printKeyValue("Digest", doc.result.Digest)
			printKeyValue("Roots", strconv.Itoa(doc.res.Contents().Len()))
			printStats(stats)

			rows := classRows(doc.res)
			if len(rows) > 0 {
				fmt.Println(renderTable([]string{"Package", "Class", "Objects", "Proxies"}, rows, 2, 3))
			}
			if stats.Recovered > 0 {
				printWarning("%d malformed values were replaced by defaults (run with -v for details)", stats.Recovered)
			}
			return nil
		},
	}

	flags.registerRead(cmd)
	return cmd
}

type classCount struct {
	class   *model.Class
	objects int
	proxies int
}

// classRows counts the objects of res by class, proxies included, most
// frequent first.
func classRows(res *model.Resource) [][]string {
	counts := make(map[*model.Class]*classCount)
	seen := make(map[*model.Object]bool)
	count := func(o *model.Object) {
		if seen[o] {
			return
		}
		seen[o] = true
		cc := counts[o.Class()]
		if cc == nil {
			cc = &classCount{class: o.Class()}
			counts[o.Class()] = cc
		}
		if o.IsProxy() {
			cc.proxies++
		} else {
			cc.objects++
		}
	}

	for _, o := range res.AllObjects() {
		count(o)
		for _, f := range o.Class().Features() {
			if !f.IsReference() || f.IsContainment() || f.IsContainer() || !o.IsSet(f) {
				continue
			}
			if f.IsMany() {
				for _, t := range o.List(f).Objects() {
					if t.IsProxy() {
						count(t)
					}
				}
			} else if t, ok := o.Get(f).(*model.Object); ok && t != nil && t.IsProxy() {
				count(t)
			}
		}
	}

	sorted := make([]*classCount, 0, len(counts))
	for _, cc := range counts {
		sorted = append(sorted, cc)
	}
	slices.SortFunc(sorted, func(a, b *classCount) int {
		if n := cmp.Compare(b.objects+b.proxies, a.objects+a.proxies); n != 0 {
			return n
		}
		return cmp.Compare(a.class.Name(), b.class.Name())
	})

	rows := make([][]string, len(sorted))
	for i, cc := range sorted {
		rows[i] = []string{
			cc.class.Package().Name(),
			cc.class.Name(),
			strconv.Itoa(cc.objects),
			strconv.Itoa(cc.proxies),
		}
	}
	return rows
}
