// Package pkg provides the libraries behind pathcover, a tool that computes a
// minimal set of trails covering every action of a state graph.
//
// # Overview
//
// A state graph is a directed graph whose nodes are states and whose edges are
// actions. pathcover reduces the graph to a flow network, solves a max-flow
// problem over it and reads off trails that start at the root state and
// together traverse every action at least once. The packages are:
//
//  1. [network] - Flow network storage, reduction and reachability checks
//  2. [maxflow] - Max-flow solvers (naive, Dinic, push-relabel)
//  3. [optimize] - Post-processing that reduces the trail count
//  4. [extract] - Trail extraction for acyclic and cyclic networks
//  5. [pathcover] - The builder tying the stages together
//  6. [io] - Graph import and trail export (JSONL or JSON documents)
//  7. [pipeline] - Cached end-to-end runs used by the CLI
//
// Supporting packages: [extstack] (disk-spilling stack used by extraction),
// [cache], [render], [metrics], [observability], [errors] and [buildinfo].
//
// # Data flow
//
//	graph.json
//	     ↓
//	[io] ImportGraph + Feed
//	     ↓
//	[pathcover] Builder.Cover (reduce → solve → optimize)
//	     ↓
//	[extract] trails, streamed one at a time
//	     ↓
//	[io] WriteTrails (JSONL / JSON)
//
// # Quick Start
//
//	g, err := io.ImportGraph("graph.json")
//	if err != nil {
//	    return err
//	}
//	b := pathcover.New(pathcover.Options{})
//	idx, err := io.Feed(ctx, b, g, 0)
//	if err != nil {
//	    return err
//	}
//	cover, err := b.Cover(ctx)
//	if err != nil {
//	    return err
//	}
//	defer cover.Close()
//	_, err = io.WriteTrails(os.Stdout, io.FormatJSONL, cover, g, idx, &cover.Stats)
//
// Most callers should use [pipeline.Runner], which adds caching, logging and
// observability hooks on top of these steps.
//
// [network]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/network
// [maxflow]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/maxflow
// [optimize]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/optimize
// [extract]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/extract
// [pathcover]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/pathcover
// [io]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/pipeline#Runner
// [extstack]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/extstack
// [cache]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/render
// [metrics]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/metrics
// [observability]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pathcover/pkg/buildinfo
package pkg
