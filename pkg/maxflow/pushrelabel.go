package maxflow

import "github.com/matzehuels/pathcover/pkg/network"

// PushRelabel implements the FIFO push-relabel algorithm with per-node
// adjacency cursors.
type PushRelabel struct{}

// Name implements Solver.
func (PushRelabel) Name() string { return NamePushRelabel }

type pushRelabel struct {
	n      *network.Network
	height []int
	excess []int64
	cursor []int
	queue  []int32
}

// Solve implements Solver.
func (PushRelabel) Solve(n *network.Network) error {
	if err := requireReduced(n); err != nil {
		return err
	}
	count := n.NodeCount()
	pr := &pushRelabel{
		n:      n,
		height: make([]int, count),
		excess: make([]int64, count),
		cursor: make([]int, count),
	}

	src := n.Source()
	pr.height[src] = count
	for _, e := range n.Adjacent(src) {
		if r := n.Residual(e); r > 0 {
			pr.excess[src] += r
			pr.push(e, r)
		}
	}

	for len(pr.queue) > 0 {
		v := pr.queue[0]
		pr.queue = pr.queue[1:]
		pr.discharge(v)
	}
	return nil
}

func (pr *pushRelabel) push(e int32, d int64) {
	v, w := pr.n.From(e), pr.n.To(e)
	pr.n.IncFlow(e, d)
	pr.excess[v] -= d
	pr.excess[w] += d
	if pr.excess[w] == d && w != pr.n.Source() && w != pr.n.Sink() {
		pr.queue = append(pr.queue, w)
	}
}

func (pr *pushRelabel) discharge(v int32) {
	adj := pr.n.Adjacent(v)
	for pr.excess[v] > 0 {
		if pr.cursor[v] == len(adj) {
			pr.relabel(v)
			pr.cursor[v] = 0
			continue
		}
		e := adj[pr.cursor[v]]
		if r := pr.n.Residual(e); r > 0 && pr.height[v] == pr.height[pr.n.To(e)]+1 {
			pr.push(e, min(pr.excess[v], r))
		} else {
			pr.cursor[v]++
		}
	}
}

func (pr *pushRelabel) relabel(v int32) {
	lowest := -1
	for _, e := range pr.n.Adjacent(v) {
		if pr.n.Residual(e) <= 0 {
			continue
		}
		if h := pr.height[pr.n.To(e)]; lowest < 0 || h < lowest {
			lowest = h
		}
	}
	pr.height[v] = lowest + 1
}
