package optimize

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/maxflow"
	"github.com/matzehuels/pathcover/pkg/network"
	"github.com/matzehuels/pathcover/pkg/network/networktest"
)

type A = networktest.Action

// sharedJoin has two trails from the root meeting at state 4, which then
// splits again. The naive solver routes both continuations through the first
// branch and ends the second branch at 4, producing three trails where two
// suffice.
var sharedJoin = []A{{1, 2}, {1, 3}, {2, 4}, {3, 4}, {4, 5}, {4, 6}}

func TestOptionsIterations(t *testing.T) {
	tests := []struct {
		opts Options
		want int
	}{
		{Options{}, DefaultMaxIterations},
		{Options{MaxIterations: 3}, 3},
		{Options{Depth: 4}, 3},
		{Options{MaxIterations: 2, Depth: 10}, 2},
		{Options{Depth: 1}, 0},
	}
	for _, tt := range tests {
		if got := tt.opts.Iterations(); got != tt.want {
			t.Errorf("%+v.Iterations() = %d, want %d", tt.opts, got, tt.want)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		o, err := ByName(name, Options{})
		require.NoError(t, err)
		assert.Equal(t, name, o.Name())
	}
	_, err := ByName("annealing", Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestOptimizersMergeTrails(t *testing.T) {
	for _, name := range []string{NameHeuristic, NameBFS} {
		t.Run(name, func(t *testing.T) {
			n := networktest.Build(t, 6, sharedJoin)
			require.NoError(t, maxflow.Naive{}.Solve(n))
			require.Equal(t, int64(3), n.PathCount())

			o, err := ByName(name, Options{})
			require.NoError(t, err)
			require.NoError(t, o.Optimize(n))

			assert.Equal(t, int64(2), n.PathCount())
			networktest.CheckFlow(t, n)
			assert.NoError(t, maxflow.CheckSaturated(n))
			assert.NoError(t, maxflow.CheckConservation(n))
		})
	}
}

func TestNoneLeavesFlow(t *testing.T) {
	n := networktest.Build(t, 6, sharedJoin)
	require.NoError(t, maxflow.Naive{}.Solve(n))
	require.NoError(t, None{}.Optimize(n))
	assert.Equal(t, int64(3), n.PathCount())
}

func TestHeuristicZeroIterations(t *testing.T) {
	n := networktest.Build(t, 6, sharedJoin)
	require.NoError(t, maxflow.Naive{}.Solve(n))
	require.NoError(t, Heuristic{Iterations: 0}.Optimize(n))
	assert.Equal(t, int64(3), n.PathCount())
}

func TestOptimizeRejectsCirculated(t *testing.T) {
	n := networktest.Build(t, 2, []A{{1, 2}})
	require.NoError(t, maxflow.Naive{}.Solve(n))
	require.NoError(t, n.Circulate())

	assert.True(t, errors.Is(BFS{}.Optimize(n), errors.ErrCodeInvalidState))
	assert.True(t, errors.Is(Heuristic{Iterations: 1}.Optimize(n), errors.ErrCodeInvalidState))
}

func TestOptimizeRequiresReduce(t *testing.T) {
	n := network.New()
	_, _ = n.AddNode(1)
	require.NoError(t, n.Shutdown())
	assert.ErrorIs(t, BFS{}.Optimize(n), network.ErrNotReduced)
}

func TestOptimizersOnRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 40; i++ {
		states := 2 + rng.Intn(20)
		acyclic := i%2 == 0
		actions := networktest.RandomActions(rng, states, rng.Intn(2*states), acyclic)
		solver := maxflow.Solver(maxflow.Dinic{})
		if acyclic {
			solver = maxflow.Naive{}
		}

		for _, name := range []string{NameHeuristic, NameBFS} {
			t.Run(fmt.Sprintf("%d/%s", i, name), func(t *testing.T) {
				n := networktest.Build(t, states, actions)
				require.NoError(t, solver.Solve(n))
				before := n.PathCount()

				o, _ := ByName(name, Options{})
				require.NoError(t, o.Optimize(n))

				assert.LessOrEqual(t, n.PathCount(), before)
				networktest.CheckFlow(t, n)
				assert.NoError(t, maxflow.CheckSaturated(n))
				assert.NoError(t, maxflow.CheckConservation(n))
			})
		}
	}
}
