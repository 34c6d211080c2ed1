package pathcover

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/extstack"
	"github.com/matzehuels/pathcover/pkg/maxflow"
	"github.com/matzehuels/pathcover/pkg/optimize"
)

// Auto selects the solver or optimizer from the topology of the state graph:
// acyclic graphs use the naive solver and the heuristic optimizer, cyclic
// graphs use Dinic's algorithm without optimization.
const Auto = "auto"

// Options configures a cover run.
type Options struct {
	// Solver is a maxflow solver name or Auto.
	Solver string `json:"solver,omitempty"`

	// Optimizer is an optimize optimizer name or Auto.
	Optimizer string `json:"optimizer,omitempty"`

	// MaxOptimizerIterations caps the heuristic optimizer. Zero selects
	// optimize.DefaultMaxIterations.
	MaxOptimizerIterations int `json:"max_optimizer_iterations,omitempty"`

	// Depth is the longest trace length seen during exploration, if known.
	Depth int `json:"depth,omitempty"`

	// Stack configures the spill stack of the Euler extractor.
	Stack extstack.Options `json:"-"`

	// Logger receives progress messages. Defaults to a discarding logger.
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero values with defaults.
func (o *Options) SetDefaults() {
	if o.Solver == "" {
		o.Solver = Auto
	}
	if o.Optimizer == "" {
		o.Optimizer = Auto
	}
	if o.MaxOptimizerIterations <= 0 {
		o.MaxOptimizerIterations = optimize.DefaultMaxIterations
	}
	o.Stack.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks solver and optimizer names.
func (o *Options) Validate() error {
	if o.Solver != Auto && !slices.Contains(maxflow.Names(), o.Solver) {
		return errors.New(errors.ErrCodeUnsupported, "unknown solver %q (want auto or one of %v)", o.Solver, maxflow.Names())
	}
	if o.Optimizer != Auto && !slices.Contains(optimize.Names(), o.Optimizer) {
		return errors.New(errors.ErrCodeUnsupported, "unknown optimizer %q (want auto or one of %v)", o.Optimizer, optimize.Names())
	}
	if o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative, got %d", o.Depth)
	}
	return nil
}

func (o *Options) solver(cyclic bool) (maxflow.Solver, error) {
	name := o.Solver
	if name == Auto {
		name = maxflow.NameNaive
		if cyclic {
			name = maxflow.NameDinic
		}
	}
	return maxflow.ByName(name)
}

func (o *Options) optimizer(cyclic bool) (optimize.Optimizer, error) {
	name := o.Optimizer
	if name == Auto {
		name = optimize.NameHeuristic
		if cyclic {
			name = optimize.NameNone
		}
	}
	return optimize.ByName(name, optimize.Options{
		MaxIterations: o.MaxOptimizerIterations,
		Depth:         o.Depth,
	})
}
