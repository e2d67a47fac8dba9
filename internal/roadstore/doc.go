// Package roadstore holds the current road network as an undirected weighted
// adjacency list.
//
// # Lifecycle
//
// The store is rebuilt wholesale from every incoming road description. There
// is no merge and no removal: Rebuild discards the previous adjacency and
// inserts two directed entries per road, one in each direction, both carrying
// the road's length.
//
// # Thread-Safety
//
// The hub serializes Rebuild and path queries on one goroutine, so the lock is
// uncontended in normal operation. It exists so that readers on other
// goroutines (metrics, debugging) never observe a half-built adjacency.
package roadstore
