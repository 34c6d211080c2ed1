package optimize

import (
	"container/list"
	"math"

	"github.com/matzehuels/pathcover/pkg/network"
)

const inf = math.MaxInt32

// Heuristic cancels cycles through the root found by a guided depth-first
// search.
//
// Nodes are first layered by their BFS distance from the root over action
// edges. Each round then ranks nodes with a 0-1 BFS over flow-carrying action
// edges, where stepping to a deeper layer is free and every other step costs
// one. The cycle search only follows edges that advance the rank exactly as
// the ranking did, so it cannot revisit a node, and it cancels flow as soon
// as it reaches a return edge into the root. Rounds stop early when one makes
// no progress.
type Heuristic struct {
	// Iterations is the maximum number of rounds.
	Iterations int
}

// Name implements Optimizer.
func (Heuristic) Name() string { return NameHeuristic }

type heuristic struct {
	n        *network.Network
	distance []int
	color    []int
	cursor   []int
}

// Optimize implements Optimizer.
func (h Heuristic) Optimize(n *network.Network) error {
	if err := check(n); err != nil {
		return err
	}
	count := n.NodeCount()
	st := &heuristic{
		n:        n,
		distance: make([]int, count),
		color:    make([]int, count),
		cursor:   make([]int, count),
	}

	st.distanceBFS()
	for i := 1; i <= h.Iterations; i++ {
		st.colorBFS()
		for v := range st.cursor {
			st.cursor[v] = 0
		}

		progress := false
		for st.cancelCycle() != 0 {
			progress = true
		}
		if !progress {
			break
		}
	}
	return nil
}

// weight is 0 when the step from u to v goes one layer deeper.
func (st *heuristic) weight(u, v int32) int {
	if st.distance[u] < st.distance[v] {
		return 0
	}
	return 1
}

func (st *heuristic) distanceBFS() {
	for v := range st.distance {
		st.distance[v] = inf
	}
	root := st.n.Root()
	st.distance[root] = 0
	queue := []int32{root}
	for head := 0; head < len(queue); head++ {
		u := queue[head]
		for _, e := range st.n.Adjacent(u) {
			if !st.n.IsActionRecord(e) {
				continue
			}
			if to := st.n.To(e); st.distance[u]+1 < st.distance[to] {
				st.distance[to] = st.distance[u] + 1
				queue = append(queue, to)
			}
		}
	}
}

func (st *heuristic) colorBFS() {
	for v := range st.color {
		st.color[v] = inf
	}
	root := st.n.Root()
	st.color[root] = 0

	dq := list.New()
	dq.PushBack(root)
	for dq.Len() > 0 {
		u := dq.Remove(dq.Front()).(int32)
		for _, e := range st.n.Adjacent(u) {
			if st.n.Flow(e) == 0 || !st.n.IsActionRecord(e) {
				continue
			}
			to := st.n.To(e)
			w := st.weight(u, to)
			if c := st.color[u] + w; c < st.color[to] && c < inf {
				st.color[to] = c
				if w == 1 {
					dq.PushBack(to)
				} else {
					dq.PushFront(to)
				}
			}
		}
	}
}

// cancelCycle searches one flow-carrying cycle from the root that closes
// through a return edge and cancels the bottleneck along it. It returns the
// amount cancelled, or 0 when the search is exhausted for this round.
func (st *heuristic) cancelCycle() int64 {
	type frame struct {
		u    int32
		in   int32
		flow int64
	}
	n, root := st.n, st.n.Root()
	path := []frame{{u: root, in: -1, flow: inf}}

	for len(path) > 0 {
		top := path[len(path)-1]
		adj := n.Adjacent(top.u)
		descended := false
		for st.cursor[top.u] < len(adj) {
			e := adj[st.cursor[top.u]]
			f := n.Flow(e)
			if f == 0 {
				st.cursor[top.u]++
				continue
			}
			to := n.To(e)
			if network.IsForward(e) && to == root && !n.IsActionRecord(e) {
				df := min(top.flow, f)
				n.IncFlow(e, -df)
				for i := len(path) - 1; i > 0; i-- {
					n.IncFlow(path[i].in, -df)
				}
				return df
			}
			if !n.IsActionRecord(e) {
				st.cursor[top.u]++
				continue
			}
			if st.color[top.u]+st.weight(top.u, to) == st.color[to] {
				path = append(path, frame{u: to, in: e, flow: min(top.flow, f)})
				descended = true
				break
			}
			st.cursor[top.u]++
		}
		if descended {
			continue
		}
		path = path[:len(path)-1]
		if len(path) > 0 {
			st.cursor[path[len(path)-1].u]++
		}
	}
	return 0
}
