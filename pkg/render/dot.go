package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/graphwire/pkg/model"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the object's set single-valued attributes to its label.
	// When false, labels show the class name and fragment only.
	Detailed bool
}

type node struct {
	id       string
	idx      int
	obj      *model.Object
	external bool
}

type graph struct {
	res   *model.Resource
	nodes []*node
	index map[*model.Object]*node
}

func (g *graph) node(o *model.Object, external bool) *node {
	if n, ok := g.index[o]; ok {
		return n
	}
	n := &node{id: fmt.Sprintf("n%d", len(g.nodes)), idx: len(g.nodes), obj: o, external: external}
	g.nodes = append(g.nodes, n)
	g.index[o] = n
	return n
}

// ToDOT converts the objects of res to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(res *model.Resource, opts Options) string {
	g := &graph{res: res, index: make(map[*model.Object]*node)}
	for _, o := range res.AllObjects() {
		g.node(o, false)
	}

	var edges bytes.Buffer
	// Targets outside res are appended to g.nodes while iterating; they have
	// no outgoing edges of their own.
	for i := 0; i < len(g.nodes); i++ {
		if n := g.nodes[i]; !n.external {
			g.writeEdges(&edges, n)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.nodes {
		attrs := fmtAttrs(n, g.fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %s [%s];\n", n.id, strings.Join(attrs, ", "))
	}
	buf.WriteString("\n")
	buf.Write(edges.Bytes())
	buf.WriteString("}\n")
	return buf.String()
}

func (g *graph) writeEdges(buf *bytes.Buffer, from *node) {
	o := from.obj
	for _, f := range o.Class().Features() {
		if !f.IsReference() || f.IsContainer() || f.IsTransient() || !o.IsSet(f) {
			continue
		}
		for _, target := range targets(o, f) {
			to, seen := g.index[target]
			if !seen {
				to = g.node(target, true)
			}
			if f.Opposite() != nil && !f.IsContainment() && seen && !to.external && to.idx < from.idx {
				// Drawn from the other end.
				continue
			}
			fmt.Fprintf(buf, "  %s -> %s [%s];\n", from.id, to.id, strings.Join(edgeAttrs(f), ", "))
		}
	}
}

func targets(o *model.Object, f *model.Feature) []*model.Object {
	if f.IsMany() {
		return o.List(f).Objects()
	}
	if t, ok := o.Get(f).(*model.Object); ok && t != nil {
		return []*model.Object{t}
	}
	return nil
}

func edgeAttrs(f *model.Feature) []string {
	label := f.Name()
	attrs := []string{}
	switch op := f.Opposite(); {
	case f.IsContainment():
	case op != nil:
		if op != f {
			label += " / " + op.Name()
		}
		attrs = append(attrs, "style=dashed", "dir=both")
	default:
		attrs = append(attrs, "style=dashed")
	}
	return append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
}

func (g *graph) fmtLabel(n *node, detailed bool) string {
	o := n.obj
	head := o.Class().Name()
	switch {
	case o.IsProxy():
		return head + "\n" + o.ProxyURI()
	case n.external:
		return head + "\n" + o.URI()
	}
	if frag := g.res.Fragment(o); frag != "" {
		head += "\n" + frag
	}
	if !detailed {
		return head
	}

	parts := []string{head}
	for _, f := range o.Class().Features() {
		if f.IsReference() || f.IsMany() || f.IsTransient() || !o.IsSet(f) {
			continue
		}
		s, ok := f.DataType().ConvertToString(o.Get(f))
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name(), s))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.obj.IsProxy():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case n.external:
		attrs = append(attrs, "style=\"rounded,dashed\"")
	}
	return attrs
}
