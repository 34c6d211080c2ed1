package extract

import (
	"io"

	"github.com/matzehuels/pathcover/pkg/network"
)

// Acyclic extracts trails by walking from the root along flow-carrying edges
// until the walk re-enters the root. It yields exactly PathCount trails when
// the actions reachable from the root form a DAG.
//
// Self-loops off the root carry no trail of their own, so the first walk
// through a state takes all of its loops before moving on.
type Acyclic struct {
	n      *network.Network
	cursor []int
	looped []bool
	left   int64
}

// NewAcyclic creates an extractor over a circulated network.
func NewAcyclic(n *network.Network) (*Acyclic, error) {
	if !n.IsCirculated() {
		return nil, ErrNotCirculated
	}
	return &Acyclic{
		n:      n,
		cursor: make([]int, n.NodeCount()),
		looped: make([]bool, n.NodeCount()),
		left:   n.PathCount(),
	}, nil
}

// Next implements Extractor.
func (x *Acyclic) Next() (Trail, error) {
	if x.left <= 0 {
		return nil, io.EOF
	}
	x.left--

	root := x.n.Root()
	var trail Trail
	for v := root; ; {
		if v != root && !x.looped[v] {
			trail = x.selfLoops(trail, v)
		}
		e, ok := nextEdge(x.n, x.cursor, v)
		if !ok {
			break
		}
		x.n.IncFlow(e, -1)
		if x.n.HasAction(e) {
			trail = append(trail, step(x.n, e))
		}
		if v = x.n.To(e); v == root {
			break
		}
	}
	if len(trail) == 0 {
		x.left = 0
		return nil, io.EOF
	}
	return trail, nil
}

// selfLoops appends every remaining unit of flow on the self-loops of v.
func (x *Acyclic) selfLoops(trail Trail, v int32) Trail {
	x.looped[v] = true
	for _, e := range x.n.Adjacent(v) {
		if !x.n.HasAction(e) || x.n.To(e) != v {
			continue
		}
		for x.n.Flow(e) > 0 {
			x.n.IncFlow(e, -1)
			trail = append(trail, step(x.n, e))
		}
	}
	return trail
}

// Close implements Extractor.
func (x *Acyclic) Close() error { return nil }
