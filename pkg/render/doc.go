// Package render draws object graphs as node-link diagrams.
//
// # Overview
//
// [ToDOT] turns the objects of a resource into Graphviz DOT source:
//
//   - Containment edges are solid and point from container to child
//   - Cross references are dashed; bidirectional pairs are drawn once with
//     arrowheads at both ends
//   - Proxies (objects held by another document) are grey and labelled with
//     the URI they stand in for
//   - Objects that live in another loaded resource are drawn with a dashed
//     outline
//
// [RenderSVG] lays the DOT source out in-process with Graphviz; [ToPDF] and
// [ToPNG] convert SVG with the external rsvg-convert tool.
//
//	dot := render.ToDOT(res, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package render
