// Package optimize reduces the number of trails a saturated flow decomposes
// into by cancelling flow along cycles through the root.
//
// A trail ends whenever flow re-enters the root. Pushing flow back along a
// residual cycle that leaves the root against a return edge and re-enters it
// against an outgoing edge merges two trails into one. Neither optimizer
// changes the flow on source or sink edges, so coverage is unchanged and only
// the trail count drops.
package optimize

import (
	"sort"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/network"
)

// Optimizer cancels redundant root re-entries in a saturated network.
type Optimizer interface {
	// Name returns the identifier used by ByName.
	Name() string

	// Optimize mutates the flow of n. The caller recomputes the trail count.
	Optimize(n *network.Network) error
}

// Optimizer names accepted by ByName.
const (
	NameHeuristic = "heuristic"
	NameBFS       = "bfs"
	NameNone      = "none"
)

// DefaultMaxIterations caps the heuristic optimizer when no trace depth is
// known.
const DefaultMaxIterations = 8

// Options configures optimizers built by ByName.
type Options struct {
	// MaxIterations caps the number of heuristic rounds. Zero selects
	// DefaultMaxIterations; use the None optimizer to skip optimization.
	MaxIterations int

	// Depth is the length of the longest trace discovered while exploring.
	// When positive, the heuristic runs at most Depth-1 rounds.
	Depth int
}

// Iterations returns the number of heuristic rounds for these options.
func (o Options) Iterations() int {
	iter := o.MaxIterations
	if iter <= 0 {
		iter = DefaultMaxIterations
	}
	if o.Depth > 0 {
		iter = min(iter, o.Depth-1)
	}
	return max(iter, 0)
}

// ByName returns the optimizer registered under name.
func ByName(name string, opts Options) (Optimizer, error) {
	switch name {
	case NameHeuristic:
		return Heuristic{Iterations: opts.Iterations()}, nil
	case NameBFS:
		return BFS{}, nil
	case NameNone:
		return None{}, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown optimizer %q (want one of %v)", name, Names())
}

// Names returns the registered optimizer names in sorted order.
func Names() []string {
	names := []string{NameHeuristic, NameBFS, NameNone}
	sort.Strings(names)
	return names
}

// None leaves the flow untouched.
type None struct{}

// Name implements Optimizer.
func (None) Name() string { return NameNone }

// Optimize implements Optimizer.
func (None) Optimize(*network.Network) error { return nil }

var errCirculated = errors.New(errors.ErrCodeInvalidState, "cannot optimize a circulated network")

func check(n *network.Network) error {
	if !n.IsReduced() {
		return network.ErrNotReduced
	}
	if n.IsCirculated() {
		return errCirculated
	}
	return nil
}
