// Package network implements the flow network used to compute path covers.
//
// A Network is a directed multigraph stored as parallel arrays. Node 0 is the
// source, node 1 is the root (the first registered state) and the sink is
// created by Shutdown as the last node. Every inserted edge owns a twin: edge
// ids are even for the forward view and odd for the backward (residual) view
// of the same record. The backward view swaps the endpoints and reports
// capacity minus forward flow, so the pair is consistent after every mutation.
//
// # Lifecycle
//
// While building, AddNode and AddActionEdge may be called from any number of
// goroutines. AddActionEdge names its endpoints by Fingerprint and blocks until
// both endpoints have been registered. Shutdown freezes the network, creates
// the sink and releases all waiters. Everything after Shutdown (Reduce,
// solving, optimizing, extraction) is single-threaded.
//
// # Reduction
//
// Reduce turns the minimum path cover problem into a max-flow problem. For
// each node the action-edge imbalance in-out is computed: a surplus of
// incoming actions is fed from the source, a surplus of outgoing actions
// drains into the sink. Every state other than the root gets a return edge to
// the root with a very large capacity, which lets trails end anywhere and
// restart at the root.
package network
