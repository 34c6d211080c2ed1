package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	pio "github.com/matzehuels/pathcover/pkg/io"
)

// Palette is the sequence of colors assigned to trails, cycled when a cover
// has more trails than colors.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#17becf", "#bcbd22", "#7f7f7f",
}

// Options configures diagram generation.
type Options struct {
	// Trails to draw. When empty the plain state graph is drawn.
	Trails []pio.Trail

	// Detailed shows state ids next to their labels.
	Detailed bool
}

// ToDOT converts a state graph to Graphviz DOT source. The first state of g
// is the root.
func ToDOT(g *pio.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for i, s := range g.States {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(s, opts.Detailed))}
		if i == 0 {
			attrs = append(attrs, "peripheries=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	if len(opts.Trails) == 0 {
		for _, a := range g.Actions {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, color=grey40];\n", a.From, a.To, a.Name)
		}
	} else {
		for _, t := range opts.Trails {
			color := Palette[t.Index%len(Palette)]
			for j, s := range t.Steps {
				label := fmt.Sprintf("%d.%d", t.Index, j)
				if s.Action != "" {
					label = s.Action + " " + label
				}
				fmt.Fprintf(&buf, "  %q -> %q [label=%q, color=%q, fontcolor=%q, penwidth=2];\n",
					s.From, s.To, label, color, color)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s pio.State, detailed bool) string {
	switch {
	case s.Label == "":
		return s.ID
	case detailed:
		return s.ID + "\n" + s.Label
	default:
		return s.Label
	}
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg header (pt units, odd origin)
// with a plain pixel viewBox so the diagram scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
