// Package wire defines the messages exchanged with the question publisher and
// the judge, and converts them to and from JSON.
package wire

import (
	"github.com/specialistvlad/transithub/internal/pathfinder"
	"github.com/specialistvlad/transithub/internal/roadstore"
)

// Road is one road as it appears in a question.
type Road struct {
	Source      int `json:"source"`
	Destination int `json:"destination"`
	Length      int `json:"length"`
}

// Question carries a full road description plus the route to compute.
type Question struct {
	// ID is optional; the hub assigns one when the publisher leaves it empty.
	ID          string `json:"id,omitempty"`
	RoadCount   int    `json:"road_count"`
	Edges       []Road `json:"edges"`
	Origin      int    `json:"origin"`
	Destination int    `json:"destination"`
}

// Answer is the request sent to the judge.
type Answer struct {
	ID   string `json:"id"`
	Path []int  `json:"path"`
}

// Verdict is the judge's reply to an Answer.
type Verdict struct {
	Score int    `json:"score"`
	Log   string `json:"log"`
}

// Roads returns the roads the question declares, clamped to the data actually
// supplied. clamped is true when RoadCount disagreed with len(Edges).
func (q Question) Roads() (edges []roadstore.Edge, clamped bool) {
	n := q.RoadCount
	switch {
	case n < 0:
		n = 0
	case n > len(q.Edges):
		n = len(q.Edges)
	}
	clamped = n != q.RoadCount || n != len(q.Edges)

	edges = make([]roadstore.Edge, n)
	for i, r := range q.Edges[:n] {
		edges[i] = roadstore.Edge{
			Source:      roadstore.NodeID(r.Source),
			Destination: roadstore.NodeID(r.Destination),
			Length:      r.Length,
		}
	}
	return edges, clamped
}

// Endpoints returns the origin and destination of the requested route.
func (q Question) Endpoints() (origin, destination roadstore.NodeID) {
	return roadstore.NodeID(q.Origin), roadstore.NodeID(q.Destination)
}

// NewAnswer packages a search result. An empty result becomes an empty,
// non-null path.
func NewAnswer(id string, res pathfinder.Result) Answer {
	path := make([]int, len(res.Path))
	for i, n := range res.Path {
		path[i] = int(n)
	}
	return Answer{ID: id, Path: path}
}
