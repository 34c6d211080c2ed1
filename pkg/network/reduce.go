package network

// Reduce adds the structural source, sink and return edges. It runs once on a
// shut down network.
func (n *Network) Reduce() error {
	if !n.IsShutdown() {
		return ErrNotShutdown
	}
	if n.reduced {
		return ErrReduced
	}

	count := n.NodeCount()
	imbalance := make([]int64, count)
	for k := range n.from {
		if !n.action[k] {
			continue
		}
		imbalance[n.to[k]]++
		imbalance[n.from[k]]--
	}

	n.returns = make([]int32, count)
	for v := range n.returns {
		n.returns[v] = -1
	}

	for v := int32(1); v < n.sink; v++ {
		switch d := imbalance[v]; {
		case d > 0:
			if _, err := n.insertEdge(Source, v, d, false, false); err != nil {
				return err
			}
		case d < 0:
			if _, err := n.insertEdge(v, n.sink, -d, false, false); err != nil {
				return err
			}
		}
		if v != Root {
			e, err := n.insertEdge(v, Root, Unbounded/2, false, false)
			if err != nil {
				return err
			}
			n.returns[v] = e
		}
	}
	n.reduced = true
	return nil
}

// Circulate adds one unit of flow to every action edge, turning a saturated
// reduction into a circulation where each action carries its mandatory unit.
func (n *Network) Circulate() error {
	if !n.reduced {
		return ErrNotReduced
	}
	if n.circulated {
		return nil
	}
	for k := range n.from {
		if n.action[k] {
			n.IncFlow(int32(2*k), 1)
		}
	}
	n.circulated = true
	return nil
}

// PathCount returns the number of trails the current flow decomposes into:
// the number of times flow re-enters the root from a state.
func (n *Network) PathCount() int64 {
	var count int64
	for k := range n.from {
		if n.to[k] != Root || n.from[k] == Source {
			continue
		}
		count += n.flow[k]
		if n.action[k] && !n.circulated {
			count++
		}
	}
	return count
}

// TotalLength returns the number of action traversals across all trails.
func (n *Network) TotalLength() int64 {
	var total int64
	for k := range n.from {
		if !n.action[k] {
			continue
		}
		total += n.flow[k]
		if !n.circulated {
			total++
		}
	}
	return total
}

// SourceCapacity returns the total capacity leaving the source.
func (n *Network) SourceCapacity() int64 {
	var total int64
	for _, e := range n.Adjacent(Source) {
		if IsForward(e) {
			total += n.Capacity(e)
		}
	}
	return total
}

// FlowValue returns the total flow leaving the source.
func (n *Network) FlowValue() int64 {
	var total int64
	for _, e := range n.Adjacent(Source) {
		if IsForward(e) {
			total += n.Flow(e)
		}
	}
	return total
}

// Excess returns inflow minus outflow at v over forward edges.
func (n *Network) Excess(v int32) int64 {
	var excess int64
	for _, e := range n.Adjacent(v) {
		if IsForward(e) {
			excess -= n.Flow(e)
		} else {
			excess += n.Flow(Twin(e))
		}
	}
	return excess
}

// ResetFlow clears the flow on every edge. Reduce must have run.
func (n *Network) ResetFlow() {
	for k := range n.flow {
		n.flow[k] = 0
	}
	n.circulated = false
}
