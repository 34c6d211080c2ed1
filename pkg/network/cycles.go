package network

const (
	white uint8 = iota
	gray
	black
)

// IsCyclic reports whether the action edges reachable from the root contain a
// cycle. Return edges into the root, edges into the sink and self-loops are
// ignored. The network is not modified.
func (n *Network) IsCyclic() bool {
	color := make([]uint8, n.NodeCount())

	type frame struct {
		v   int32
		cur int
	}
	stack := []frame{{v: Root}}
	color[Root] = gray

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		adj := n.Adjacent(top.v)
		descended := false
		for top.cur < len(adj) {
			e := adj[top.cur]
			top.cur++
			if !n.followable(e) {
				continue
			}
			w := n.To(e)
			switch color[w] {
			case gray:
				return true
			case white:
				color[w] = gray
				stack = append(stack, frame{v: w})
				descended = true
			}
			if descended {
				break
			}
		}
		if descended {
			continue
		}
		color[top.v] = black
		stack = stack[:len(stack)-1]
	}
	return false
}

func (n *Network) followable(e int32) bool {
	if !IsForward(e) {
		return false
	}
	from, to := n.From(e), n.To(e)
	if from == to || to == n.sink {
		return false
	}
	if to == Root && !n.HasAction(e) {
		return false
	}
	return true
}
