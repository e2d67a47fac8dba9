// Package pathfinder computes the cheapest route between two cities of a
// roadstore graph.
//
// The search is label-setting Dijkstra over a binary heap with lazy deletion:
// a relaxation pushes a fresh frontier entry instead of decreasing a key, and
// entries whose distance no longer matches the best known distance are
// skipped when popped. Road lengths must be non-negative.
//
// Ties between equally short routes are broken by frontier push order, so a
// fixed adjacency order always yields the same route.
//
// The engine keeps no state between calls. It only reads the graph, so the
// caller must not rebuild the graph while a search is running.
package pathfinder
