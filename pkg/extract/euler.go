package extract

import (
	"io"
	"slices"

	"github.com/matzehuels/pathcover/pkg/extstack"
	"github.com/matzehuels/pathcover/pkg/network"
)

// Euler extracts trails with an iterative Hierholzer decomposition. The edge
// stack lives in an extstack.Stack so the traversal depth is bounded by disk
// rather than memory. Popped edges form the Euler circuit in reverse; each
// time an edge leaving the root is popped, the steps collected so far are one
// complete trail.
type Euler struct {
	n      *network.Network
	stack  *extstack.Stack
	cursor []int
}

// NewEuler creates an extractor over a circulated network. It takes the
// first unit of flow leaving the root.
func NewEuler(n *network.Network, opts extstack.Options) (*Euler, error) {
	if !n.IsCirculated() {
		return nil, ErrNotCirculated
	}
	stack, err := extstack.New(opts)
	if err != nil {
		return nil, err
	}
	x := &Euler{
		n:      n,
		stack:  stack,
		cursor: make([]int, n.NodeCount()),
	}
	if e, ok := nextEdge(n, make([]int, n.NodeCount()), n.Root()); ok {
		n.IncFlow(e, -1)
		if err := stack.Push(e); err != nil {
			_ = stack.Close()
			return nil, err
		}
	}
	return x, nil
}

// Next implements Extractor.
func (x *Euler) Next() (Trail, error) {
	root := x.n.Root()
	var trail Trail
	for !x.stack.Empty() {
		top, err := x.stack.Peek()
		if err != nil {
			return nil, err
		}

		if e, ok := nextEdge(x.n, x.cursor, x.n.To(top)); ok {
			x.n.IncFlow(e, -1)
			if err := x.stack.Push(e); err != nil {
				return nil, err
			}
			continue
		}

		if _, err := x.stack.Pop(); err != nil {
			return nil, err
		}
		if x.n.HasAction(top) {
			trail = append(trail, step(x.n, top))
		}
		if x.n.From(top) == root && len(trail) > 0 {
			break
		}
	}
	if len(trail) == 0 {
		return nil, io.EOF
	}
	slices.Reverse(trail)
	return trail, nil
}

// Depth returns the number of edges on the traversal stack.
func (x *Euler) Depth() int { return x.stack.Len() }

// Close implements Extractor and removes the spill directory.
func (x *Euler) Close() error { return x.stack.Close() }
