package network

import "github.com/matzehuels/pathcover/pkg/errors"

// CheckReachable verifies that every state can be reached from the root over
// action edges. A state that cannot be reached would leave its source or sink
// capacity unsaturated.
func (n *Network) CheckReachable() error {
	seen := n.reachable()
	missing, first := 0, int32(-1)
	for v := Root; int(v) < len(seen); v++ {
		if !n.IsState(v) || seen[v] {
			continue
		}
		if first < 0 {
			first = v
		}
		missing++
	}
	if missing > 0 {
		return errors.New(errors.ErrCodeInfeasible,
			"%d state(s) unreachable from the root, first is state %d", missing, first-1)
	}
	return nil
}

func (n *Network) reachable() []bool {
	seen := make([]bool, n.NodeCount())
	seen[Root] = true
	queue := []int32{Root}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, e := range n.Adjacent(v) {
			if !n.HasAction(e) {
				continue
			}
			if w := n.To(e); !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
	return seen
}
