package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/matzehuels/graphwire/pkg/model"
)

// Format is an output format of the render command.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// FormatOf returns the format named by the extension of path.
func FormatOf(path string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")); f {
	case FormatDOT, FormatSVG, FormatPDF, FormatPNG:
		return f, nil
	case "gv":
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want .dot, .svg, .pdf or .png)", filepath.Ext(path))
	}
}

// ToPDF converts SVG bytes to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, FormatPDF)
}

// ToPNG converts SVG bytes to PNG; a scale of 2.0 doubles the resolution.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(svg, FormatPNG, "-z", fmt.Sprintf("%.2f", scale))
}

// rsvgConvert pipes svg through rsvg-convert from librsvg.
func rsvgConvert(svg []byte, format Format, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	cmd := exec.Command("rsvg-convert", append([]string{"-f", string(format)}, extraArgs...)...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}

// Render draws res in format.
func Render(ctx context.Context, res *model.Resource, format Format, opts Options) ([]byte, error) {
	dot := ToDOT(res, opts)
	if format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPDF:
		return ToPDF(svg)
	case FormatPNG:
		return ToPNG(svg, 2.0)
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}
