package maxflow

import "github.com/matzehuels/pathcover/pkg/network"

// Naive computes a feasible flow with one depth-first pass from the root.
//
// Every action edge is traversed once. A traversal that reaches a node with
// no unvisited successors ends a trail there, which routes one unit through
// that node's return edge. Each action edge then carries as many trails as end
// below it; one unit per edge is the mandatory coverage, so the remaining
// count is the flow. Source and sink edges are saturated at the end.
//
// The result is a valid maximum flow for any network whose states are all
// reachable from the root, but the trail count is only small when the action
// edges form a DAG.
type Naive struct{}

// Name implements Solver.
func (Naive) Name() string { return NameNaive }

// Solve implements Solver.
func (Naive) Solve(n *network.Network) error {
	if err := requireReduced(n); err != nil {
		return err
	}
	if err := n.CheckReachable(); err != nil {
		return err
	}

	type frame struct {
		v   int32
		in  int32
		cur int
		sum int64
	}

	root := n.Root()
	visited := make([]bool, n.NodeCount())
	visited[root] = true
	stack := []frame{{v: root, in: -1}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		adj := n.Adjacent(top.v)
		descended := false
		for top.cur < len(adj) {
			e := adj[top.cur]
			top.cur++
			if !n.HasAction(e) {
				continue
			}
			w := n.To(e)
			if w == top.v {
				continue
			}
			if visited[w] {
				n.IncFlow(e, 1)
				if w != root {
					n.IncFlow(n.ReturnEdge(w), 1)
				}
				top.sum++
				continue
			}
			visited[w] = true
			stack = append(stack, frame{v: w, in: e})
			descended = true
			break
		}
		if descended {
			continue
		}

		done := *top
		stack = stack[:len(stack)-1]
		if done.in < 0 {
			continue
		}
		sum := done.sum
		if sum == 0 {
			n.IncFlow(n.ReturnEdge(done.v), 1)
			sum = 1
		}
		n.IncFlow(done.in, sum)
		stack[len(stack)-1].sum += sum
	}

	for k := 0; k < n.EdgeCount(); k += 2 {
		e := int32(k)
		switch {
		case n.HasAction(e) && n.From(e) != n.To(e):
			n.IncFlow(e, -1)
		case n.From(e) == n.Source() || n.To(e) == n.Sink():
			n.IncFlow(e, n.Residual(e))
		}
	}
	return nil
}
