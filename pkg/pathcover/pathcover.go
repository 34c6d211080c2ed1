// Package pathcover computes a small set of root-to-root trails that together
// take every action of a state graph at least once.
//
// A Builder is fed concurrently while states are discovered. Cover then
// freezes the graph, reduces it to a flow problem, solves and optimizes it,
// and returns a Cover that yields trails lazily:
//
//	b := pathcover.New(pathcover.Options{Logger: logger})
//	root, _ := b.AddState(fpInit)
//	_, _ = b.AddState(fpNext)
//	_, _ = b.AddAction(ctx, fpInit, fpNext)
//
//	cover, err := b.Cover(ctx)
//	if err != nil {
//	    return err
//	}
//	defer cover.Close()
//	for {
//	    trail, err := cover.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package pathcover

import (
	"context"
	"time"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/extract"
	"github.com/matzehuels/pathcover/pkg/maxflow"
	"github.com/matzehuels/pathcover/pkg/network"
	"github.com/matzehuels/pathcover/pkg/observability"
)

// Builder collects states and actions. AddState and AddAction are safe for
// concurrent use until Cover is called.
type Builder struct {
	net  *network.Network
	opts Options
}

// New creates an empty builder.
func New(opts Options) *Builder {
	opts.SetDefaults()
	return &Builder{net: network.New(), opts: opts}
}

// AddState registers a state and returns its id. The first state added is
// the root every trail starts from and has id 0.
func (b *Builder) AddState(fp network.Fingerprint) (int32, error) {
	id, err := b.net.AddNode(fp)
	if err != nil {
		return -1, err
	}
	return id - 1, nil
}

// AddAction registers an action between two states and returns its id. It
// blocks until both states have been added, ctx is done, or Cover is called.
func (b *Builder) AddAction(ctx context.Context, from, to network.Fingerprint) (int32, error) {
	e, err := b.net.AddActionEdge(ctx, from, to)
	if err != nil {
		return -1, err
	}
	return e >> 1, nil
}

// States returns the number of states added so far.
func (b *Builder) States() int { return b.net.StateCount() }

// Actions returns the number of actions added so far.
func (b *Builder) Actions() int { return b.net.ActionCount() }

// Stats summarizes a cover run.
type Stats struct {
	States        int           `json:"states"`
	Actions       int           `json:"actions"`
	Cyclic        bool          `json:"cyclic"`
	Solver        string        `json:"solver"`
	Optimizer     string        `json:"optimizer"`
	InitialTrails int64         `json:"initial_trails"`
	Trails        int64         `json:"trails"`
	TotalLength   int64         `json:"total_length"`
	AverageLength float64       `json:"average_length"`
	ReduceTime    time.Duration `json:"reduce_time"`
	SolveTime     time.Duration `json:"solve_time"`
	OptimizeTime  time.Duration `json:"optimize_time"`
}

// Cover is a computed path cover whose trails are produced on demand.
type Cover struct {
	Stats Stats

	extractor extract.Extractor
}

// Next returns the next trail or io.EOF.
func (c *Cover) Next() (extract.Trail, error) { return c.extractor.Next() }

// Trails drains the remaining trails.
func (c *Cover) Trails() ([]extract.Trail, error) { return extract.Collect(c.extractor) }

// Close releases the extractor's spill files.
func (c *Cover) Close() error { return c.extractor.Close() }

// Cover freezes the builder and computes the path cover. Goroutines still
// blocked in AddAction fail with network.ErrShutdown. Cover may be called
// only once.
func (b *Builder) Cover(ctx context.Context) (_ *Cover, err error) {
	if err := b.opts.Validate(); err != nil {
		return nil, err
	}
	if err := b.net.Shutdown(); err != nil {
		return nil, err
	}

	n, logger := b.net, b.opts.Logger
	stats := Stats{States: n.StateCount(), Actions: n.ActionCount()}
	start := time.Now()

	hooks := observability.Pipeline()
	hooks.OnCoverStart(ctx, stats.States, stats.Actions)
	defer func() {
		hooks.OnCoverComplete(ctx, stats.Cyclic, stats.InitialTrails, stats.Trails, time.Since(start), err)
	}()

	logger.Info("computing path cover", "states", stats.States, "actions", stats.Actions)

	// Reduce
	stageStart := time.Now()
	err = n.Reduce()
	stats.ReduceTime = time.Since(stageStart)
	hooks.OnStageComplete(ctx, observability.StageReduce, stats.ReduceTime, err)
	if err != nil {
		return nil, err
	}
	stats.Cyclic = n.IsCyclic()
	if stats.Cyclic {
		logger.Warn("state graph is cyclic, the path cover may not be minimal")
	}
	if err := interrupted(ctx); err != nil {
		return nil, err
	}

	// Solve
	solver, err := b.opts.solver(stats.Cyclic)
	if err != nil {
		return nil, err
	}
	stats.Solver = solver.Name()
	stageStart = time.Now()
	err = solve(n, solver)
	stats.SolveTime = time.Since(stageStart)
	hooks.OnStageComplete(ctx, observability.StageSolve, stats.SolveTime, err)
	if err != nil {
		return nil, err
	}
	stats.InitialTrails = n.PathCount()
	logger.Info("constructed initial path cover",
		"solver", stats.Solver,
		"trails", stats.InitialTrails,
		"duration", stats.SolveTime)
	if err := interrupted(ctx); err != nil {
		return nil, err
	}

	// Optimize
	opt, err := b.opts.optimizer(stats.Cyclic)
	if err != nil {
		return nil, err
	}
	stats.Optimizer = opt.Name()
	stageStart = time.Now()
	err = opt.Optimize(n)
	stats.OptimizeTime = time.Since(stageStart)
	hooks.OnStageComplete(ctx, observability.StageOptimize, stats.OptimizeTime, err)
	if err != nil {
		return nil, err
	}
	stats.Trails = n.PathCount()
	if removed := stats.InitialTrails - stats.Trails; removed > 0 {
		logger.Info("removed redundant trails",
			"optimizer", stats.Optimizer,
			"removed", removed,
			"duration", stats.OptimizeTime)
	}

	// Extract
	if err := n.Circulate(); err != nil {
		return nil, err
	}
	stats.TotalLength = n.TotalLength()
	if stats.Trails > 0 {
		stats.AverageLength = float64(stats.TotalLength) / float64(stats.Trails)
	}
	logger.Info("computed path cover",
		"trails", stats.Trails,
		"total_length", stats.TotalLength,
		"average_length", stats.AverageLength)

	var x extract.Extractor
	if stats.Cyclic {
		x, err = extract.NewEuler(n, b.opts.Stack)
	} else {
		x, err = extract.NewAcyclic(n)
	}
	if err != nil {
		return nil, err
	}
	return &Cover{Stats: stats, extractor: x}, nil
}

func solve(n *network.Network, s maxflow.Solver) error {
	if err := n.CheckReachable(); err != nil {
		return err
	}
	if err := s.Solve(n); err != nil {
		return err
	}
	return maxflow.CheckSaturated(n)
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInterrupted, err, "path cover")
	}
	return nil
}
