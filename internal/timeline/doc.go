// Package timeline computes the planning view: the visible date window, its
// column grid, bar positions, dependency lookups and the two task rollups.
//
// Every function here is pure. Callers own the (mode, anchor) state and pass
// it in on each recomputation; nothing is cached or mutated in place.
package timeline
