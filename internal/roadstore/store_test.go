package roadstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuild_InsertsBothDirections(t *testing.T) {
	s := New()

	s.Rebuild([]Edge{{Source: 1, Destination: 2, Length: 5}})

	assert.Equal(t, []Neighbor{{ID: 2, Length: 5}}, s.Neighbors(1))
	assert.Equal(t, []Neighbor{{ID: 1, Length: 5}}, s.Neighbors(2))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.EdgeCount())
}

func TestRebuild_ReplacesPreviousState(t *testing.T) {
	s := New()
	s.Rebuild([]Edge{{Source: 1, Destination: 2, Length: 5}})

	s.Rebuild([]Edge{{Source: 3, Destination: 4, Length: 7}})

	assert.Empty(t, s.Neighbors(1))
	assert.Empty(t, s.Neighbors(2))
	assert.False(t, s.Has(1))
	assert.Equal(t, []Neighbor{{ID: 4, Length: 7}}, s.Neighbors(3))
	assert.Equal(t, []NodeID{3, 4}, s.Nodes())
}

func TestRebuild_KeepsDuplicatesAndOrder(t *testing.T) {
	s := New()

	s.Rebuild([]Edge{
		{Source: 1, Destination: 2, Length: 9},
		{Source: 1, Destination: 3, Length: 1},
		{Source: 2, Destination: 1, Length: 4},
	})

	assert.Equal(t, []Neighbor{
		{ID: 2, Length: 9},
		{ID: 3, Length: 1},
		{ID: 2, Length: 4},
	}, s.Neighbors(1))
	assert.Equal(t, []Neighbor{
		{ID: 1, Length: 9},
		{ID: 1, Length: 4},
	}, s.Neighbors(2))
}

func TestRebuild_SelfLoopAndZeroLength(t *testing.T) {
	s := New()

	s.Rebuild([]Edge{{Source: 7, Destination: 7, Length: 0}})

	assert.Equal(t, []Neighbor{{ID: 7, Length: 0}, {ID: 7, Length: 0}}, s.Neighbors(7))
	assert.True(t, s.Has(7))
}

func TestNeighbors_UnknownNode(t *testing.T) {
	s := New()
	s.Rebuild(nil)

	assert.Empty(t, s.Neighbors(42))
	assert.False(t, s.Has(42))
	assert.Empty(t, s.Nodes())
}

func TestNeighbors_ReturnsCopy(t *testing.T) {
	s := New()
	s.Rebuild([]Edge{{Source: 1, Destination: 2, Length: 5}})

	got := s.Neighbors(1)
	got[0].Length = 100

	assert.Equal(t, 5, s.Neighbors(1)[0].Length)
}

func TestStore_ConcurrentReadsDuringRebuild(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 100 {
			s.Rebuild([]Edge{{Source: NodeID(i), Destination: NodeID(i + 1), Length: i}})
		}
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			for _, id := range s.Nodes() {
				n := s.Neighbors(id)
				// A rebuild may land between Nodes and Neighbors.
				if len(n) > 1 {
					t.Errorf("node %d: expected at most one neighbor, got %s", id, fmt.Sprint(n))
				}
			}
		}
	}()
	wg.Wait()

	require.Equal(t, 2, s.Len())
}
