// Package pipeline runs the complete import → cover → export flow used by the
// CLI.
//
// The pipeline consists of three stages:
//
//  1. Import: read and validate a state graph file
//  2. Cover: feed the graph into a builder and compute the path cover
//  3. Export: stream the trails as JSON Lines or a JSON document
//
// Exported covers are cached keyed by the content hash of the graph file and
// every option that changes the output, so rerunning on an unchanged graph
// replays the cached bytes.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{GraphPath: "graph.json"}, os.Stdout)
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathcover/pkg/cache"
	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/extstack"
	pio "github.com/matzehuels/pathcover/pkg/io"
	"github.com/matzehuels/pathcover/pkg/pathcover"
)

// DefaultFormat is the default trail output format.
const DefaultFormat = pio.FormatJSONL

// Options contains all configuration for a pipeline run.
type Options struct {
	// GraphPath is the state graph file to cover.
	GraphPath string `json:"graph_path"`

	// Format is the trail output format (jsonl or json).
	Format string `json:"format,omitempty"`

	// Cover options
	Solver    string `json:"solver,omitempty"`
	Optimizer string `json:"optimizer,omitempty"`
	// MaxIterations caps heuristic rounds; 0 selects the default.
	MaxIterations int `json:"max_iterations,omitempty"`
	// Depth overrides the depth recorded in the graph file when > 0.
	Depth   int `json:"depth,omitempty"`
	Workers int `json:"workers,omitempty"`

	Stack extstack.Options `json:"-"`

	// Refresh recomputes the cover even when a cached one exists.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GraphHash is the SHA-256 of the graph file.
	GraphHash string

	// Stats describes the cover. For cache hits they are the stats of the
	// run that populated the cache.
	Stats pathcover.Stats

	// Trails is the number of trails written.
	Trails int

	// CacheHit reports whether the output was replayed from the cache.
	CacheHit bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.GraphPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "graph path is required")
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := pio.ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Workers <= 0 {
		o.Workers = pio.DefaultWorkers
	}
	if o.MaxIterations < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max iterations must not be negative, got %d", o.MaxIterations)
	}
	if o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative, got %d", o.Depth)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	co := o.CoverOptions(0)
	if err := co.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// CoverOptions returns the pathcover options for a graph whose file records
// graphDepth as its exploration depth.
func (o *Options) CoverOptions(graphDepth int) pathcover.Options {
	depth := o.Depth
	if depth == 0 {
		depth = graphDepth
	}
	co := pathcover.Options{
		Solver:                 o.Solver,
		Optimizer:              o.Optimizer,
		MaxOptimizerIterations: o.MaxIterations,
		Depth:                  depth,
		Stack:                  o.Stack,
		Logger:                 o.Logger,
	}
	co.SetDefaults()
	return co
}

// CoverKeyOpts returns cache key options for the exported cover. The depth
// recorded in the graph file is part of the graph hash, so only the override
// goes into the key.
func (o *Options) CoverKeyOpts() cache.CoverKeyOpts {
	co := o.CoverOptions(0)
	return cache.CoverKeyOpts{
		Solver:        co.Solver,
		Optimizer:     co.Optimizer,
		MaxIterations: co.MaxOptimizerIterations,
		Depth:         o.Depth,
		Format:        o.Format,
	}
}
