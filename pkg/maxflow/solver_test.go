package maxflow

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/network"
	"github.com/matzehuels/pathcover/pkg/network/networktest"
)

type A = networktest.Action

func TestByName(t *testing.T) {
	for _, name := range Names() {
		s, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := ByName("ford-fulkerson")
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{NameDinic, NameNaive, NamePushRelabel}, Names())
}

func TestSolveRequiresReduce(t *testing.T) {
	n := network.New()
	_, _ = n.AddNode(1)
	require.NoError(t, n.Shutdown())
	for _, name := range Names() {
		s, _ := ByName(name)
		assert.ErrorIs(t, s.Solve(n), network.ErrNotReduced, name)
	}
}

func TestDeadEndScenario(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			n := networktest.Build(t, 2, []A{{1, 2}})
			s, _ := ByName(name)
			require.NoError(t, s.Solve(n))

			assert.NoError(t, CheckSaturated(n))
			assert.NoError(t, CheckConservation(n))
			assert.Equal(t, int64(1), n.FlowValue())
			assert.Equal(t, int64(1), n.PathCount())
			assert.Equal(t, int64(1), n.Flow(n.ReturnEdge(2)))
		})
	}
}

func TestTwoParallelEdgesScenario(t *testing.T) {
	for _, name := range []string{NameDinic, NamePushRelabel} {
		t.Run(name, func(t *testing.T) {
			n := networktest.Build(t, 2, []A{{1, 2}, {2, 1}})
			s, _ := ByName(name)
			require.NoError(t, s.Solve(n))
			assert.Equal(t, int64(0), n.FlowValue())
			assert.Equal(t, int64(1), n.PathCount())
		})
	}
}

func TestNaiveRejectsUnreachableStates(t *testing.T) {
	n := networktest.Build(t, 3, []A{{1, 2}, {3, 2}})
	err := Naive{}.Solve(n)
	assert.True(t, errors.Is(err, errors.ErrCodeInfeasible))
}

func TestNaiveBranching(t *testing.T) {
	// root fans out to 2 and 3 which both reach 4: two trails
	n := networktest.Build(t, 4, []A{{1, 2}, {1, 3}, {2, 4}, {3, 4}})
	require.NoError(t, Naive{}.Solve(n))

	networktest.CheckFlow(t, n)
	assert.NoError(t, CheckSaturated(n))
	assert.NoError(t, CheckConservation(n))
	assert.Equal(t, int64(2), n.PathCount())
	assert.Equal(t, int64(4), n.TotalLength())
}

func TestSolversOnRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 60; i++ {
		states := 2 + rng.Intn(25)
		extra := rng.Intn(3 * states)
		acyclic := i%2 == 0
		actions := networktest.RandomActions(rng, states, extra, acyclic)

		names := []string{NameDinic, NamePushRelabel}
		if acyclic {
			names = append(names, NameNaive)
		}
		for _, name := range names {
			t.Run(fmt.Sprintf("%d/%s", i, name), func(t *testing.T) {
				n := networktest.Build(t, states, actions)
				s, _ := ByName(name)
				require.NoError(t, s.Solve(n))

				networktest.CheckFlow(t, n)
				assert.NoError(t, CheckSaturated(n))
				assert.NoError(t, CheckConservation(n))
				if acyclic {
					assert.False(t, n.IsCyclic())
				}

				// Every action edge is walked at least once, and every trail
				// leaves the root at least once.
				assert.GreaterOrEqual(t, n.TotalLength(), int64(n.ActionCount()))
				assert.LessOrEqual(t, n.PathCount(), n.TotalLength())
			})
		}
	}
}

func TestCyclicGraphAllSolversSaturate(t *testing.T) {
	// root -> 2 -> 3 -> root, with 2 -> 4 dead end
	actions := []A{{1, 2}, {2, 3}, {3, 1}, {2, 4}}
	for _, name := range []string{NameDinic, NamePushRelabel} {
		t.Run(name, func(t *testing.T) {
			n := networktest.Build(t, 4, actions)
			require.True(t, n.IsCyclic())
			s, _ := ByName(name)
			require.NoError(t, s.Solve(n))
			networktest.CheckFlow(t, n)
			assert.NoError(t, CheckSaturated(n))
			assert.NoError(t, CheckConservation(n))
			assert.Equal(t, int64(1), n.FlowValue())
		})
	}
}
