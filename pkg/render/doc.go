// Package render draws state graphs and their path covers as node-link
// diagrams.
//
// [ToDOT] produces Graphviz DOT source. States appear as rounded boxes with
// the root drawn with a double border. Without trails every action is one
// grey arrow; with trails each trail gets its own color and every step is
// drawn as a separate arrow labelled "<trail>.<step>", so an action covered
// by several trails shows up several times.
//
//	dot := render.ToDOT(g, render.Options{Trails: doc.Trails})
//	svg, err := render.RenderSVG(ctx, dot)
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
package render
