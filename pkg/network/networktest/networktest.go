// Package networktest provides helpers for building flow networks in tests.
package networktest

import (
	"context"
	"math/rand"
	"testing"

	"github.com/matzehuels/pathcover/pkg/network"
)

// Action is an action edge between two states, numbered from 1. State 1 is
// the root.
type Action [2]int

// Build registers states 1..states, adds the actions in order, shuts the
// network down and reduces it.
func Build(t testing.TB, states int, actions []Action) *network.Network {
	t.Helper()
	n := network.New()
	for i := 1; i <= states; i++ {
		if _, err := n.AddNode(network.Fingerprint(i)); err != nil {
			t.Fatalf("AddNode(%d): %v", i, err)
		}
	}
	for _, a := range actions {
		if _, err := n.AddActionEdge(context.Background(), network.Fingerprint(a[0]), network.Fingerprint(a[1])); err != nil {
			t.Fatalf("AddActionEdge(%d, %d): %v", a[0], a[1], err)
		}
	}
	if err := n.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := n.Reduce(); err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	return n
}

// RandomActions returns a random action set over states 1..states in which
// every state is reachable from the root. With acyclic set, every action
// leads from a lower to a higher state number or is a self-loop, which
// IsCyclic ignores.
func RandomActions(rng *rand.Rand, states, extra int, acyclic bool) []Action {
	actions := make([]Action, 0, states-1+extra)
	for i := 2; i <= states; i++ {
		actions = append(actions, Action{1 + rng.Intn(i-1), i})
	}
	if acyclic && states < 2 {
		return actions
	}
	for len(actions) < cap(actions) {
		a, b := 1+rng.Intn(states), 1+rng.Intn(states)
		if acyclic && a > b {
			a, b = b, a
		}
		actions = append(actions, Action{a, b})
	}
	rng.Shuffle(len(actions), func(i, j int) { actions[i], actions[j] = actions[j], actions[i] })
	return actions
}

// CheckFlow reports every edge whose flow lies outside [0, capacity] or whose
// two views disagree.
func CheckFlow(t testing.TB, n *network.Network) {
	t.Helper()
	for k := 0; k < n.EdgeCount(); k += 2 {
		e := int32(k)
		f, c := n.Flow(e), n.Capacity(e)
		if f < 0 || f > c {
			t.Errorf("edge %d: flow %d outside [0, %d]", e, f, c)
		}
		if back := n.Flow(network.Twin(e)); f+back != c {
			t.Errorf("edge %d: forward %d + backward %d != capacity %d", e, f, back, c)
		}
	}
}
