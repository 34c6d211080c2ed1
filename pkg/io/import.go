package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/network"
	"github.com/matzehuels/pathcover/pkg/pathcover"
)

// Graph is a decoded state graph.
type Graph struct {
	States  []State  `json:"states"`
	Actions []Action `json:"actions"`
	Depth   int      `json:"depth,omitempty"`
}

// State is a discovered state.
type State struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// Action is a discovered transition between two states.
type Action struct {
	From string `json:"from"`
	To   string `json:"to"`
	Name string `json:"name,omitempty"`
}

// Fingerprint returns the fingerprint of a state id.
func Fingerprint(id string) network.Fingerprint {
	return network.Fingerprint(xxhash.Sum64String(id))
}

// ReadGraph decodes and validates a state graph from r.
//
// ReadGraph returns an INVALID_INPUT error if the JSON is malformed, the graph
// has no states, a state id is empty or repeated, or two ids share a
// fingerprint. It returns a NOT_FOUND error if an action names an unknown
// state. ReadGraph does not close r.
func ReadGraph(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode state graph")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// ImportGraph reads a state graph file at path.
func ImportGraph(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ReadGraph(f)
}

// Validate checks ids, fingerprints and action endpoints.
func (g *Graph) Validate() error {
	if len(g.States) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "state graph has no states")
	}
	if g.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative, got %d", g.Depth)
	}
	ids := make(map[string]bool, len(g.States))
	fps := make(map[network.Fingerprint]string, len(g.States))
	for i, s := range g.States {
		if s.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "state %d: empty id", i)
		}
		if ids[s.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "state %s: duplicate id", s.ID)
		}
		ids[s.ID] = true
		fp := Fingerprint(s.ID)
		if other, ok := fps[fp]; ok {
			return errors.New(errors.ErrCodeInvalidInput, "state %s: fingerprint collides with state %s", s.ID, other)
		}
		fps[fp] = s.ID
	}
	for i, a := range g.Actions {
		if !ids[a.From] {
			return errors.New(errors.ErrCodeNotFound, "action %d %s->%s: unknown state %s", i, a.From, a.To, a.From)
		}
		if !ids[a.To] {
			return errors.New(errors.ErrCodeNotFound, "action %d %s->%s: unknown state %s", i, a.From, a.To, a.To)
		}
	}
	return nil
}

// Index maps builder ids back to graph entries.
type Index struct {
	// States[id] is the graph index of the state with builder id id.
	States []int
	// Actions[id] is the graph index of the action with builder id id.
	Actions []int
}

// DefaultWorkers is the number of producer goroutines Feed uses by default.
const DefaultWorkers = 4

// Feed adds every state and action of g to b. The first state is added
// before anything else so it becomes the root. The remaining states and all
// actions are added by workers goroutines each, concurrently, so actions
// routinely wait for their endpoints to be registered.
func Feed(ctx context.Context, b *pathcover.Builder, g *Graph, workers int) (*Index, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	idx := &Index{
		States:  make([]int, len(g.States)),
		Actions: make([]int, len(g.Actions)),
	}

	root, err := b.AddState(Fingerprint(g.States[0].ID))
	if err != nil {
		return nil, fmt.Errorf("state %s: %w", g.States[0].ID, err)
	}
	idx.States[root] = 0

	// ids are unique, so workers write disjoint index slots
	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for i := 1 + w; i < len(g.States); i += workers {
				id, err := b.AddState(Fingerprint(g.States[i].ID))
				if err != nil {
					return fmt.Errorf("state %s: %w", g.States[i].ID, err)
				}
				idx.States[id] = i
			}
			return nil
		})
		eg.Go(func() error {
			for i := w; i < len(g.Actions); i += workers {
				a := g.Actions[i]
				id, err := b.AddAction(ctx, Fingerprint(a.From), Fingerprint(a.To))
				if err != nil {
					return fmt.Errorf("action %s->%s: %w", a.From, a.To, err)
				}
				idx.Actions[id] = i
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}
