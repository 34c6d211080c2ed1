package network

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/matzehuels/pathcover/pkg/errors"
)

// Unbounded is the capacity of action edges. Return edges get half of it.
const Unbounded int64 = math.MaxInt32

// Fingerprint is the stable identity of a discovered state.
type Fingerprint uint64

const (
	// Source is the node id of the flow source.
	Source int32 = 0
	// Root is the node id of the first registered state.
	Root int32 = 1
)

var (
	// ErrShutdown is returned by mutations after Shutdown.
	ErrShutdown = errors.New(errors.ErrCodeInvalidState, "network is shut down")
	// ErrNotShutdown is returned by operations that need a frozen network.
	ErrNotShutdown = errors.New(errors.ErrCodeInvalidState, "network is still building")
	// ErrReduced is returned when Reduce is called twice.
	ErrReduced = errors.New(errors.ErrCodeInvalidState, "network is already reduced")
	// ErrNotReduced is returned by operations that need source and sink edges.
	ErrNotReduced = errors.New(errors.ErrCodeInvalidState, "network is not reduced")
	// ErrNoRoot is returned by Shutdown when no state was ever registered.
	ErrNoRoot = errors.New(errors.ErrCodeInvalidState, "network has no root state")
)

type node struct {
	mu    sync.Mutex
	edges []int32
}

// Network is a flow network over primitive edge arrays.
type Network struct {
	nodesMu sync.RWMutex
	nodes   []*node

	edgesMu sync.Mutex
	from    []int32
	to      []int32
	flow    []int64
	cap     []int64
	action  []bool
	actions int

	fpMu   sync.Mutex
	fpCond *sync.Cond
	fps    map[Fingerprint]int32

	// inserts are held in read mode for a whole edge insertion, so Shutdown
	// never sees an edge record without its adjacency entries.
	inserts sync.RWMutex
	closed  bool

	sink       int32
	returns    []int32
	reduced    bool
	circulated bool
}

// New creates a network that holds only the source node.
func New() *Network {
	n := &Network{
		fps:  make(map[Fingerprint]int32),
		sink: -1,
	}
	n.fpCond = sync.NewCond(&n.fpMu)
	n.appendNode()
	return n
}

// =============================================================================
// Construction
// =============================================================================

// AddNode registers a state and wakes every goroutine waiting on fp. The first
// registered state becomes the root.
func (n *Network) AddNode(fp Fingerprint) (int32, error) {
	n.fpMu.Lock()
	defer n.fpMu.Unlock()

	if n.closed {
		return -1, ErrShutdown
	}
	if id, ok := n.fps[fp]; ok {
		return id, errors.New(errors.ErrCodeInvalidInput, "fingerprint %x already registered as node %d", uint64(fp), id)
	}
	id := n.appendNode()
	n.fps[fp] = id
	n.fpCond.Broadcast()
	return id, nil
}

// AddEdge inserts a structural edge between existing nodes and returns its
// forward edge id.
func (n *Network) AddEdge(from, to int32, capacity int64) (int32, error) {
	if err := n.checkNode(from); err != nil {
		return -1, err
	}
	if err := n.checkNode(to); err != nil {
		return -1, err
	}
	if capacity < 0 {
		return -1, errors.New(errors.ErrCodeInvalidInput, "negative capacity %d", capacity)
	}
	return n.insertEdge(from, to, capacity, false, true)
}

// AddActionEdge inserts an action edge between the states identified by from
// and to, blocking until both have been registered. It fails with an
// INTERRUPTED error when ctx is done first and with ErrShutdown when the
// network is shut down while waiting.
func (n *Network) AddActionEdge(ctx context.Context, from, to Fingerprint) (int32, error) {
	u, v, err := n.resolve(ctx, from, to)
	if err != nil {
		return -1, err
	}
	return n.insertEdge(u, v, Unbounded, true, true)
}

// Lookup returns the node id registered for fp without blocking.
func (n *Network) Lookup(fp Fingerprint) (int32, bool) {
	n.fpMu.Lock()
	defer n.fpMu.Unlock()
	id, ok := n.fps[fp]
	return id, ok
}

// Shutdown freezes the network, appends the sink and discards the
// fingerprint map. Goroutines blocked in AddActionEdge fail with ErrShutdown.
func (n *Network) Shutdown() error {
	n.fpMu.Lock()
	defer n.fpMu.Unlock()

	if n.closed {
		return ErrShutdown
	}
	if n.nodeCount() < 2 {
		return ErrNoRoot
	}

	n.inserts.Lock()
	n.closed = true
	n.inserts.Unlock()

	n.sink = n.appendNode()
	n.fps = nil
	n.fpCond.Broadcast()
	return nil
}

// IsShutdown reports whether Shutdown has been called.
func (n *Network) IsShutdown() bool {
	n.fpMu.Lock()
	defer n.fpMu.Unlock()
	return n.closed
}

func (n *Network) resolve(ctx context.Context, from, to Fingerprint) (int32, int32, error) {
	n.fpMu.Lock()
	defer n.fpMu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		n.fpMu.Lock()
		n.fpCond.Broadcast()
		n.fpMu.Unlock()
	})
	defer stop()

	for {
		if n.closed {
			return -1, -1, ErrShutdown
		}
		u, okU := n.fps[from]
		v, okV := n.fps[to]
		if okU && okV {
			return u, v, nil
		}
		if err := ctx.Err(); err != nil {
			missing := from
			if okU {
				missing = to
			}
			return -1, -1, errors.Wrap(errors.ErrCodeInterrupted, err, "waiting for state %x", uint64(missing))
		}
		n.fpCond.Wait()
	}
}

func (n *Network) appendNode() int32 {
	n.nodesMu.Lock()
	defer n.nodesMu.Unlock()
	n.nodes = append(n.nodes, &node{})
	return int32(len(n.nodes) - 1)
}

func (n *Network) nodeAt(id int32) *node {
	n.nodesMu.RLock()
	defer n.nodesMu.RUnlock()
	return n.nodes[id]
}

func (n *Network) nodeCount() int {
	n.nodesMu.RLock()
	defer n.nodesMu.RUnlock()
	return len(n.nodes)
}

func (n *Network) checkNode(id int32) error {
	if id < 0 || int(id) >= n.nodeCount() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown node %d", id)
	}
	return nil
}

// insertEdge appends an edge record and registers the forward id at from and
// the backward id at to. With checked set, it refuses to mutate a shut down
// network; Reduce passes false to add its structural edges.
func (n *Network) insertEdge(from, to int32, capacity int64, action, checked bool) (int32, error) {
	n.inserts.RLock()
	defer n.inserts.RUnlock()
	if checked && n.closed {
		return -1, ErrShutdown
	}

	n.edgesMu.Lock()
	id := int32(2 * len(n.from))
	n.from = append(n.from, from)
	n.to = append(n.to, to)
	n.flow = append(n.flow, 0)
	n.cap = append(n.cap, capacity)
	n.action = append(n.action, action)
	if action {
		n.actions++
	}
	n.edgesMu.Unlock()

	u := n.nodeAt(from)
	u.mu.Lock()
	u.edges = append(u.edges, id)
	u.mu.Unlock()

	v := n.nodeAt(to)
	v.mu.Lock()
	v.edges = append(v.edges, id+1)
	v.mu.Unlock()
	return id, nil
}

// =============================================================================
// Edge views
// =============================================================================

// Twin returns the id of the other view of edge e.
func Twin(e int32) int32 { return e ^ 1 }

// IsForward reports whether e is the forward view of its record.
func IsForward(e int32) bool { return e&1 == 0 }

// From returns the tail of edge e in its view.
func (n *Network) From(e int32) int32 {
	if IsForward(e) {
		return n.from[e>>1]
	}
	return n.to[e>>1]
}

// To returns the head of edge e in its view.
func (n *Network) To(e int32) int32 {
	if IsForward(e) {
		return n.to[e>>1]
	}
	return n.from[e>>1]
}

// Capacity returns the capacity shared by both views of e.
func (n *Network) Capacity(e int32) int64 { return n.cap[e>>1] }

// Flow returns the flow of edge e in its view. The backward view carries
// capacity minus the forward flow.
func (n *Network) Flow(e int32) int64 {
	if IsForward(e) {
		return n.flow[e>>1]
	}
	return n.cap[e>>1] - n.flow[e>>1]
}

// Residual returns how much more flow fits on edge e in its view.
func (n *Network) Residual(e int32) int64 { return n.Capacity(e) - n.Flow(e) }

// HasAction reports whether e is the forward view of an action edge.
func (n *Network) HasAction(e int32) bool { return IsForward(e) && n.action[e>>1] }

// IsActionRecord reports whether either view of e belongs to an action edge.
func (n *Network) IsActionRecord(e int32) bool { return n.action[e>>1] }

// IncFlow adds d to the flow of edge e in its view; the other view changes
// by -d. It panics when the forward flow would leave [0, capacity].
func (n *Network) IncFlow(e int32, d int64) {
	k := e >> 1
	f := n.flow[k]
	if IsForward(e) {
		f += d
	} else {
		f -= d
	}
	if f < 0 || f > n.cap[k] {
		panic(fmt.Sprintf("network: flow %d on edge %d (%d->%d) outside [0, %d]",
			f, e, n.from[k], n.to[k], n.cap[k]))
	}
	n.flow[k] = f
}

// Edge is a snapshot of one edge view.
type Edge struct {
	ID        int32
	From      int32
	To        int32
	Flow      int64
	Capacity  int64
	HasAction bool
}

// Edge returns a snapshot of edge e.
func (n *Network) Edge(e int32) Edge {
	return Edge{
		ID:        e,
		From:      n.From(e),
		To:        n.To(e),
		Flow:      n.Flow(e),
		Capacity:  n.Capacity(e),
		HasAction: n.HasAction(e),
	}
}

// Adjacent returns the ids of all edge views leaving v: the forward views of
// edges inserted from v and the backward views of edges inserted to v, in
// insertion order. The returned slice must not be modified.
func (n *Network) Adjacent(v int32) []int32 {
	nd := n.nodeAt(v)
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.edges
}

// =============================================================================
// Accessors
// =============================================================================

// Source returns the source node id.
func (n *Network) Source() int32 { return Source }

// Root returns the root node id.
func (n *Network) Root() int32 { return Root }

// Sink returns the sink node id, or -1 before Shutdown.
func (n *Network) Sink() int32 { return n.sink }

// NodeCount returns the number of nodes including source and sink.
func (n *Network) NodeCount() int { return n.nodeCount() }

// EdgeCount returns the number of edge views, always even.
func (n *Network) EdgeCount() int {
	n.edgesMu.Lock()
	defer n.edgesMu.Unlock()
	return 2 * len(n.from)
}

// ActionCount returns the number of action edges.
func (n *Network) ActionCount() int {
	n.edgesMu.Lock()
	defer n.edgesMu.Unlock()
	return n.actions
}

// StateCount returns the number of registered states.
func (n *Network) StateCount() int {
	c := n.nodeCount() - 1
	if n.sink >= 0 {
		c--
	}
	return c
}

// IsState reports whether v is a registered state rather than source or sink.
func (n *Network) IsState(v int32) bool {
	return v != Source && v != n.sink && v >= 0 && int(v) < n.nodeCount()
}

// ReturnEdge returns the forward id of the return edge v->root, or -1 when v
// has none.
func (n *Network) ReturnEdge(v int32) int32 {
	if !n.reduced || int(v) >= len(n.returns) {
		return -1
	}
	return n.returns[v]
}

// IsReduced reports whether Reduce has run.
func (n *Network) IsReduced() bool { return n.reduced }

// IsCirculated reports whether Circulate has run.
func (n *Network) IsCirculated() bool { return n.circulated }
