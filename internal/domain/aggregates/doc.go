// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts avoid persistence and transport details. They mark the write
// boundaries where application invariants are enforced atomically.
package aggregates
