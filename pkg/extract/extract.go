// Package extract decomposes a circulated network into root-to-root trails.
//
// Two strategies are provided. [Acyclic] walks one trail per call from the
// root and suits networks whose actions form a DAG. [Euler] runs an iterative
// Hierholzer decomposition over a disk-spilling edge stack and splits the
// resulting circuit at every return to the root, which works for any network.
//
// Both consume the flow they walk over and can run only once per network.
// Next returns io.EOF after the last trail.
package extract

import (
	"io"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/network"
)

// Step is one action taken along a trail. From and To are state ids, the
// network node id minus one, so the root state is 0. Action is the id
// returned when the action was added.
type Step struct {
	Action int32 `json:"action"`
	From   int32 `json:"from"`
	To     int32 `json:"to"`
}

// Trail is a sequence of steps starting and ending at the root state.
type Trail []Step

// Extractor produces trails one at a time.
type Extractor interface {
	// Next returns the next trail, or io.EOF when the cover is exhausted.
	Next() (Trail, error)

	// Close releases resources such as spill files.
	Close() error
}

// ErrNotCirculated is returned when an extractor is created before the
// network has been turned into a circulation.
var ErrNotCirculated = errors.New(errors.ErrCodeInvalidState, "network is not circulated")

// Collect drains x and returns all trails.
func Collect(x Extractor) ([]Trail, error) {
	var trails []Trail
	for {
		t, err := x.Next()
		if err == io.EOF {
			return trails, nil
		}
		if err != nil {
			return trails, err
		}
		trails = append(trails, t)
	}
}

// Len returns the number of steps in t.
func (t Trail) Len() int { return len(t) }

func step(n *network.Network, e int32) Step {
	return Step{
		Action: e >> 1,
		From:   n.From(e) - 1,
		To:     n.To(e) - 1,
	}
}

// nextEdge returns the first forward edge at the cursor of v that does not
// enter the sink and still carries flow. The cursor stops on that edge.
func nextEdge(n *network.Network, cursor []int, v int32) (int32, bool) {
	adj := n.Adjacent(v)
	sink := n.Sink()
	for cursor[v] < len(adj) {
		e := adj[cursor[v]]
		if network.IsForward(e) && n.To(e) != sink && n.Flow(e) > 0 {
			return e, true
		}
		cursor[v]++
	}
	return -1, false
}
