package pathfinder

import (
	"container/heap"
	"math"
	"slices"

	"github.com/specialistvlad/transithub/internal/roadstore"
)

// Graph is the read-only view of the road network the engine needs.
// *roadstore.Store satisfies it.
type Graph interface {
	Neighbors(node roadstore.NodeID) []roadstore.Neighbor
	Has(node roadstore.NodeID) bool
}

// Outcome classifies a search. It never reaches the wire: an unknown city and
// an unreachable one both travel as an empty path.
type Outcome int

const (
	Found Outcome = iota
	Unreachable
	UnknownNode
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Unreachable:
		return "unreachable"
	case UnknownNode:
		return "unknown_node"
	default:
		return "invalid"
	}
}

// Result is the outcome of a single search.
type Result struct {
	// Path lists the cities from origin to destination inclusive. Empty when
	// no route exists.
	Path    []roadstore.NodeID
	Cost    int64
	Outcome Outcome

	// Settled and Relaxations describe how much of the graph was explored.
	Settled     int
	Relaxations int
}

// Found reports whether a route was produced.
func (r Result) Found() bool { return r.Outcome == Found }

// ShortestPath returns the cheapest route from origin to destination.
// A city that appears in no road is treated as unreachable, including the
// degenerate origin == destination case.
func ShortestPath(g Graph, origin, destination roadstore.NodeID) Result {
	if !g.Has(origin) || !g.Has(destination) {
		return Result{Path: []roadstore.NodeID{}, Outcome: UnknownNode}
	}
	if origin == destination {
		return Result{Path: []roadstore.NodeID{origin}, Outcome: Found}
	}

	s := &search{
		dist:    map[roadstore.NodeID]int64{origin: 0},
		pred:    make(map[roadstore.NodeID]roadstore.NodeID),
		settled: make(map[roadstore.NodeID]struct{}),
	}
	s.push(0, origin)

	for s.queue.Len() > 0 {
		top := heap.Pop(&s.queue).(entry)
		u := top.node
		if top.dist != s.dist[u] {
			continue
		}
		if _, done := s.settled[u]; done {
			continue
		}
		s.settled[u] = struct{}{}

		if u == destination {
			break
		}

		for _, n := range g.Neighbors(u) {
			// Settled nodes cannot improve with non-negative lengths; skipping
			// them keeps the loop finite on invalid negative input.
			if _, done := s.settled[n.ID]; done {
				continue
			}
			alt := addLength(top.dist, n.Length)
			if best, seen := s.dist[n.ID]; !seen || alt < best {
				s.dist[n.ID] = alt
				s.pred[n.ID] = u
				s.relaxations++
				s.push(alt, n.ID)
			}
		}
	}

	res := Result{Settled: len(s.settled), Relaxations: s.relaxations}
	cost, reached := s.dist[destination]
	if !reached {
		res.Path = []roadstore.NodeID{}
		res.Outcome = Unreachable
		return res
	}

	path, ok := s.walk(origin, destination)
	if !ok {
		res.Path = []roadstore.NodeID{}
		res.Outcome = Unreachable
		return res
	}
	res.Path = path
	res.Cost = cost
	res.Outcome = Found
	return res
}

type search struct {
	dist        map[roadstore.NodeID]int64
	pred        map[roadstore.NodeID]roadstore.NodeID
	settled     map[roadstore.NodeID]struct{}
	queue       frontier
	seq         uint64
	relaxations int
}

// addLength extends a distance by one road, saturating at the int64 range
// instead of wrapping.
func addLength(dist int64, length int) int64 {
	l := int64(length)
	switch {
	case l > 0 && dist > math.MaxInt64-l:
		return math.MaxInt64
	case l < 0 && dist < math.MinInt64-l:
		return math.MinInt64
	}
	return dist + l
}

func (s *search) push(dist int64, node roadstore.NodeID) {
	heap.Push(&s.queue, entry{dist: dist, seq: s.seq, node: node})
	s.seq++
}

// walk follows predecessor links back from destination. A missing link or a
// chain longer than the predecessor map means the state is inconsistent and
// no partial path is returned.
func (s *search) walk(origin, destination roadstore.NodeID) ([]roadstore.NodeID, bool) {
	path := []roadstore.NodeID{destination}
	for at := destination; at != origin; {
		prev, ok := s.pred[at]
		if !ok || len(path) > len(s.pred) {
			return nil, false
		}
		path = append(path, prev)
		at = prev
	}
	slices.Reverse(path)
	return path, true
}
