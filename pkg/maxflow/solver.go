// Package maxflow drives flow from the source to the sink of a reduced
// network until no augmenting path remains.
//
// Three interchangeable solvers are provided:
//
//   - [Naive]: a single depth-first pass from the root that is only valid when
//     the action edges reachable from the root form a DAG
//   - [Dinic]: level graphs and blocking flows, correct for every network
//   - [PushRelabel]: FIFO push-relabel, correct for every network
//
// Every solver mutates the network through IncFlow only. After any of them
// runs, flow is conserved at every node except source and sink, every edge
// carries flow within [0, capacity], and the flow value equals the total
// source capacity when the reduction is feasible.
package maxflow

import (
	"sort"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/network"
)

// Solver saturates the source-to-sink flow of a reduced network.
type Solver interface {
	// Name returns the identifier used by ByName.
	Name() string

	// Solve mutates the flow of n until no augmenting path remains.
	Solve(n *network.Network) error
}

// Solver names accepted by ByName.
const (
	NameNaive       = "naive"
	NameDinic       = "dinic"
	NamePushRelabel = "push-relabel"
)

var solvers = map[string]func() Solver{
	NameNaive:       func() Solver { return Naive{} },
	NameDinic:       func() Solver { return Dinic{} },
	NamePushRelabel: func() Solver { return PushRelabel{} },
}

// ByName returns the solver registered under name.
func ByName(name string) (Solver, error) {
	f, ok := solvers[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown solver %q (want one of %v)", name, Names())
	}
	return f(), nil
}

// Names returns the registered solver names in sorted order.
func Names() []string {
	names := make([]string, 0, len(solvers))
	for name := range solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckSaturated returns an INFEASIBLE error unless the flow leaving the
// source equals the total source capacity.
func CheckSaturated(n *network.Network) error {
	if got, want := n.FlowValue(), n.SourceCapacity(); got != want {
		return errors.New(errors.ErrCodeInfeasible, "flow value %d does not saturate source capacity %d", got, want)
	}
	return nil
}

// CheckConservation returns an INTERNAL error when some node other than
// source and sink has non-zero excess.
func CheckConservation(n *network.Network) error {
	for v := int32(0); int(v) < n.NodeCount(); v++ {
		if v == n.Source() || v == n.Sink() {
			continue
		}
		if x := n.Excess(v); x != 0 {
			return errors.New(errors.ErrCodeInternal, "node %d has excess %d", v, x)
		}
	}
	return nil
}

func requireReduced(n *network.Network) error {
	if !n.IsReduced() {
		return network.ErrNotReduced
	}
	return nil
}
