// Package progress keeps aggregated module counters for a single corpus run.
// The tracker lives in the run context so that any component receiving the
// context can update it without a global registry.
package progress
