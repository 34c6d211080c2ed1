package maxflow

import "github.com/matzehuels/pathcover/pkg/network"

// Dinic implements Dinic's algorithm. Each phase builds a BFS level graph
// from the source and saturates it with a blocking flow found by an iterative
// depth-first search that keeps one adjacency cursor per node.
type Dinic struct{}

// Name implements Solver.
func (Dinic) Name() string { return NameDinic }

// Solve implements Solver.
func (Dinic) Solve(n *network.Network) error {
	if err := requireReduced(n); err != nil {
		return err
	}
	count := n.NodeCount()
	level := make([]int32, count)
	cursor := make([]int, count)
	var queue, path []int32

	for {
		queue = levels(n, level, queue[:0])
		if level[n.Sink()] < 0 {
			return nil
		}
		for i := range cursor {
			cursor[i] = 0
		}
		path = blockingFlow(n, level, cursor, path[:0])
	}
}

// levels assigns BFS distances from the source over residual edges, stopping
// as soon as the sink has a level.
func levels(n *network.Network, level []int32, queue []int32) []int32 {
	for i := range level {
		level[i] = -1
	}
	src, sink := n.Source(), n.Sink()
	level[src] = 0
	queue = append(queue, src)
	for head := 0; head < len(queue); head++ {
		v := queue[head]
		for _, e := range n.Adjacent(v) {
			w := n.To(e)
			if level[w] >= 0 || n.Residual(e) <= 0 {
				continue
			}
			level[w] = level[v] + 1
			if w == sink {
				return queue
			}
			queue = append(queue, w)
		}
	}
	return queue
}

func blockingFlow(n *network.Network, level []int32, cursor []int, path []int32) []int32 {
	src, sink := n.Source(), n.Sink()
	v := src
	for {
		if v == sink {
			bottleneck := n.Residual(path[0])
			for _, e := range path[1:] {
				bottleneck = min(bottleneck, n.Residual(e))
			}
			for _, e := range path {
				n.IncFlow(e, bottleneck)
			}
			path = path[:0]
			v = src
			continue
		}

		adj := n.Adjacent(v)
		advanced := false
		for cursor[v] < len(adj) {
			e := adj[cursor[v]]
			w := n.To(e)
			if level[w] == level[v]+1 && n.Residual(e) > 0 {
				path = append(path, e)
				v = w
				advanced = true
				break
			}
			cursor[v]++
		}
		if advanced {
			continue
		}
		if v == src {
			return path
		}

		// dead end: drop v from the level graph and retreat
		level[v] = -1
		e := path[len(path)-1]
		path = path[:len(path)-1]
		v = n.From(e)
		cursor[v]++
	}
}
