package network

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pathcover/pkg/errors"
)

// build registers states 1..states (fingerprints equal their index) and the
// given action edges, then shuts the network down.
func build(t *testing.T, states int, actions [][2]int) *Network {
	t.Helper()
	n := New()
	for i := 1; i <= states; i++ {
		_, err := n.AddNode(Fingerprint(i))
		require.NoError(t, err)
	}
	for _, a := range actions {
		_, err := n.AddActionEdge(context.Background(), Fingerprint(a[0]), Fingerprint(a[1]))
		require.NoError(t, err)
	}
	require.NoError(t, n.Shutdown())
	return n
}

func TestNewNetworkHasSource(t *testing.T) {
	n := New()
	assert.Equal(t, 1, n.NodeCount())
	assert.Equal(t, 0, n.EdgeCount())
	assert.Equal(t, int32(-1), n.Sink())
}

func TestFirstStateIsRoot(t *testing.T) {
	n := New()
	id, err := n.AddNode(42)
	require.NoError(t, err)
	assert.Equal(t, Root, id)

	id, err = n.AddNode(7)
	require.NoError(t, err)
	assert.Equal(t, int32(2), id)

	_, err = n.AddNode(42)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestEdgeViews(t *testing.T) {
	n := New()
	_, _ = n.AddNode(1)
	_, _ = n.AddNode(2)
	e, err := n.AddEdge(1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(0), e)
	assert.Equal(t, 2, n.EdgeCount())

	n.IncFlow(e, 3)
	back := Twin(e)
	assert.Equal(t, int32(2), n.From(back))
	assert.Equal(t, int32(1), n.To(back))
	assert.Equal(t, int64(3), n.Flow(e))
	assert.Equal(t, int64(2), n.Flow(back))
	assert.Equal(t, int64(3), n.Residual(back))
	assert.Equal(t, n.Capacity(e), n.Flow(e)+n.Flow(back))

	// pushing on the backward view cancels forward flow
	n.IncFlow(back, 2)
	assert.Equal(t, int64(1), n.Flow(e))

	assert.Equal(t, []int32{e}, n.Adjacent(1))
	assert.Equal(t, []int32{back}, n.Adjacent(2))
}

func TestIncFlowPanicsOutsideCapacity(t *testing.T) {
	n := New()
	_, _ = n.AddNode(1)
	e, err := n.AddEdge(Source, Root, 2)
	require.NoError(t, err)

	assert.Panics(t, func() { n.IncFlow(e, 3) })
	assert.Panics(t, func() { n.IncFlow(e, -1) })
	assert.Panics(t, func() { n.IncFlow(Twin(e), 1) })
	assert.NotPanics(t, func() { n.IncFlow(e, 2) })
}

func TestAddEdgeUnknownNode(t *testing.T) {
	n := New()
	_, err := n.AddEdge(0, 5, 1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestActionEdgeWaitsForEndpoints(t *testing.T) {
	n := New()
	_, err := n.AddNode(1)
	require.NoError(t, err)

	done := make(chan int32, 1)
	go func() {
		e, err := n.AddActionEdge(context.Background(), 1, 2)
		assert.NoError(t, err)
		done <- e
	}()

	select {
	case <-done:
		t.Fatal("AddActionEdge returned before its endpoint existed")
	case <-time.After(20 * time.Millisecond):
	}

	_, err = n.AddNode(2)
	require.NoError(t, err)

	select {
	case e := <-done:
		assert.Equal(t, int32(1), n.From(e))
		assert.Equal(t, int32(2), n.To(e))
		assert.True(t, n.HasAction(e))
		assert.Equal(t, Unbounded, n.Capacity(e))
	case <-time.After(2 * time.Second):
		t.Fatal("AddActionEdge did not wake up")
	}
}

func TestActionEdgeInterrupted(t *testing.T) {
	n := New()
	_, _ = n.AddNode(1)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := n.AddActionEdge(ctx, 1, 99)
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, errors.ErrCodeInterrupted))
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled wait did not return")
	}
}

func TestShutdownReleasesWaiters(t *testing.T) {
	n := New()
	_, _ = n.AddNode(1)

	errc := make(chan error, 1)
	go func() {
		_, err := n.AddActionEdge(context.Background(), 1, 99)
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, n.Shutdown())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrShutdown)
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not release waiter")
	}
}

func TestMutationAfterShutdown(t *testing.T) {
	n := build(t, 2, [][2]int{{1, 2}})

	_, err := n.AddNode(3)
	assert.ErrorIs(t, err, ErrShutdown)
	_, err = n.AddEdge(1, 2, 1)
	assert.ErrorIs(t, err, ErrShutdown)
	_, err = n.AddActionEdge(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrShutdown)
	assert.True(t, errors.Is(n.Shutdown(), errors.ErrCodeInvalidState))

	_, ok := n.Lookup(1)
	assert.False(t, ok)
}

func TestShutdownWithoutRoot(t *testing.T) {
	assert.ErrorIs(t, New().Shutdown(), ErrNoRoot)
}

func TestConcurrentConstruction(t *testing.T) {
	const states = 200
	n := New()
	_, err := n.AddNode(1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 2 + w; i <= states; i += 4 {
				// edges may name states other workers have not registered yet
				next := i%states + 1
				_, err := n.AddActionEdge(context.Background(), Fingerprint(i), Fingerprint(next))
				assert.NoError(t, err)
			}
		}(w)
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := states - w; i >= 2; i -= 4 {
				_, err := n.AddNode(Fingerprint(i))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, n.Shutdown())

	assert.Equal(t, states, n.StateCount())
	assert.Equal(t, states-1, n.ActionCount())
	assert.Equal(t, 2*(states-1), n.EdgeCount())
	assert.Equal(t, int32(states+1), n.Sink())

	adjacent := 0
	for v := int32(0); int(v) < n.NodeCount(); v++ {
		adjacent += len(n.Adjacent(v))
	}
	assert.Equal(t, n.EdgeCount(), adjacent)
}

func TestShutdownDuringInsertion(t *testing.T) {
	for round := 0; round < 50; round++ {
		n := New()
		_, _ = n.AddNode(1)
		_, _ = n.AddNode(2)

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					if _, err := n.AddActionEdge(context.Background(), 1, 2); err != nil {
						assert.ErrorIs(t, err, ErrShutdown)
						return
					}
				}
			}()
		}
		time.Sleep(time.Millisecond)
		require.NoError(t, n.Shutdown())
		actions := n.ActionCount()
		fwd, bwd := len(n.Adjacent(1)), len(n.Adjacent(2))
		wg.Wait()

		// every record counted at shutdown is already in both adjacency lists
		require.Equal(t, actions, fwd, "round %d", round)
		require.Equal(t, actions, bwd, "round %d", round)
		require.Equal(t, actions, n.ActionCount(), "round %d", round)
	}
}

func TestReduceDeadEnd(t *testing.T) {
	n := build(t, 2, [][2]int{{1, 2}})
	require.NoError(t, n.Reduce())

	// action root->S, S->root return, source->S, root->sink
	assert.Equal(t, 8, n.EdgeCount())
	assert.Equal(t, int64(1), n.SourceCapacity())

	ret := n.ReturnEdge(2)
	require.GreaterOrEqual(t, ret, int32(0))
	assert.Equal(t, int32(2), n.From(ret))
	assert.Equal(t, Root, n.To(ret))
	assert.Equal(t, Unbounded/2, n.Capacity(ret))
	assert.Equal(t, int32(-1), n.ReturnEdge(Root))

	var toSink, fromSource []Edge
	for k := 0; k < n.EdgeCount(); k += 2 {
		e := n.Edge(int32(k))
		if e.To == n.Sink() {
			toSink = append(toSink, e)
		}
		if e.From == Source {
			fromSource = append(fromSource, e)
		}
	}
	require.Len(t, toSink, 1)
	require.Len(t, fromSource, 1)
	assert.Equal(t, Root, toSink[0].From)
	assert.Equal(t, int32(2), fromSource[0].To)

	assert.ErrorIs(t, n.Reduce(), ErrReduced)
}

func TestReduceBalancedGraphHasNoSourceEdges(t *testing.T) {
	n := build(t, 2, [][2]int{{1, 2}, {2, 1}})
	require.NoError(t, n.Reduce())
	assert.Equal(t, int64(0), n.SourceCapacity())
	assert.Empty(t, n.Adjacent(n.Sink()))
}

func TestReduceBeforeShutdown(t *testing.T) {
	n := New()
	_, _ = n.AddNode(1)
	assert.ErrorIs(t, n.Reduce(), ErrNotShutdown)
}

func TestCounters(t *testing.T) {
	n := build(t, 2, [][2]int{{1, 2}, {2, 1}})
	require.NoError(t, n.Reduce())

	// without extra flow: one trail (the action into root) of length 2
	assert.Equal(t, int64(1), n.PathCount())
	assert.Equal(t, int64(2), n.TotalLength())

	require.NoError(t, n.Circulate())
	assert.True(t, n.IsCirculated())
	assert.Equal(t, int64(1), n.PathCount())
	assert.Equal(t, int64(2), n.TotalLength())
	for v := int32(0); int(v) < n.NodeCount(); v++ {
		assert.Zero(t, n.Excess(v))
	}

	n.ResetFlow()
	assert.False(t, n.IsCirculated())
}

func TestIsCyclic(t *testing.T) {
	tests := []struct {
		name    string
		states  int
		actions [][2]int
		want    bool
	}{
		{"single edge", 2, [][2]int{{1, 2}}, false},
		{"diamond", 4, [][2]int{{1, 2}, {1, 3}, {2, 4}, {3, 4}}, false},
		{"self loops", 2, [][2]int{{1, 1}, {1, 2}, {2, 2}}, false},
		{"back to root", 2, [][2]int{{1, 2}, {2, 1}}, true},
		{"inner cycle", 4, [][2]int{{1, 2}, {2, 3}, {3, 4}, {4, 2}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := build(t, tt.states, tt.actions)
			require.NoError(t, n.Reduce())
			assert.Equal(t, tt.want, n.IsCyclic())
			assert.Equal(t, tt.want, n.IsCyclic(), "second run")
		})
	}
}

func TestCheckReachable(t *testing.T) {
	n := build(t, 3, [][2]int{{1, 2}, {3, 2}})
	err := n.CheckReachable()
	assert.True(t, errors.Is(err, errors.ErrCodeInfeasible))

	n = build(t, 3, [][2]int{{1, 2}, {2, 3}})
	assert.NoError(t, n.CheckReachable())
}
