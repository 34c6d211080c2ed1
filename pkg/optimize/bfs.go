package optimize

import "github.com/matzehuels/pathcover/pkg/network"

// BFS repeatedly finds a shortest residual cycle through the root that starts
// against an edge entering the root and ends against an edge leaving it, and
// pushes one unit around it. It stops when no such cycle remains.
type BFS struct{}

// Name implements Optimizer.
func (BFS) Name() string { return NameBFS }

// Optimize implements Optimizer.
func (BFS) Optimize(n *network.Network) error {
	if err := check(n); err != nil {
		return err
	}
	parent := make([]int32, n.NodeCount())
	var queue []int32
	for {
		var found bool
		queue, found = shortestCycle(n, parent, queue[:0])
		if !found {
			return nil
		}
		root := n.Root()
		for cur := root; ; {
			e := parent[cur]
			n.IncFlow(e, 1)
			cur = n.From(e)
			if cur == root {
				break
			}
		}
	}
}

func shortestCycle(n *network.Network, parent []int32, queue []int32) ([]int32, bool) {
	for v := range parent {
		parent[v] = -1
	}
	root := n.Root()
	for _, e := range n.Adjacent(root) {
		if network.IsForward(e) || n.Residual(e) <= 0 {
			continue
		}
		to := n.To(e)
		if parent[to] < 0 {
			parent[to] = e
			queue = append(queue, to)
		}
	}

	for head := 0; head < len(queue) && parent[root] < 0; head++ {
		cur := queue[head]
		for _, e := range n.Adjacent(cur) {
			to := n.To(e)
			if to == root && network.IsForward(e) {
				continue
			}
			if parent[to] < 0 && n.Residual(e) > 0 {
				parent[to] = e
				queue = append(queue, to)
			}
		}
	}
	return queue, parent[root] >= 0
}
