// Package aggregates implements the write side of domain aggregates.
//
// Implementations compose table-level repos from internal/data/repos and own
// the transaction boundary of every invariant-critical write.
package aggregates
