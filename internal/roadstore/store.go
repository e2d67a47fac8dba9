package roadstore

import (
	"slices"
	"sync"
)

// NodeID identifies a city. IDs come straight from the road description and
// need not be contiguous.
type NodeID int

// Edge is one undirected road between two cities.
type Edge struct {
	Source      NodeID
	Destination NodeID
	Length      int
}

// Neighbor is a single directed adjacency entry.
type Neighbor struct {
	ID     NodeID
	Length int
}

// Store owns the adjacency mapping built from the latest road description.
type Store struct {
	mu    sync.RWMutex
	adj   map[NodeID][]Neighbor
	edges int
}

// New creates an empty store.
func New() *Store {
	return &Store{adj: make(map[NodeID][]Neighbor)}
}

// Rebuild replaces the whole adjacency with the given roads. Duplicate roads
// produce duplicate entries; insertion order follows the input order.
func (s *Store) Rebuild(edges []Edge) {
	adj := make(map[NodeID][]Neighbor, len(edges))
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], Neighbor{ID: e.Destination, Length: e.Length})
		adj[e.Destination] = append(adj[e.Destination], Neighbor{ID: e.Source, Length: e.Length})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adj = adj
	s.edges = len(edges)
}

// Neighbors returns the adjacency entries for node. Unknown nodes yield an
// empty slice. The returned slice is a copy.
func (s *Store) Neighbors(node NodeID) []Neighbor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.adj[node])
}

// Has reports whether node appears in any road of the current description.
func (s *Store) Has(node NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.adj[node]
	return ok
}

// Nodes returns every known node in ascending order.
func (s *Store) Nodes() []NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]NodeID, 0, len(s.adj))
	for id := range s.adj {
		nodes = append(nodes, id)
	}
	slices.Sort(nodes)
	return nodes
}

// Len returns the number of known nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.adj)
}

// EdgeCount returns the number of roads in the last description.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edges
}
