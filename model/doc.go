// Package model contains the in-memory representation of module corpus
// documents: modules, flows and steps.
//
// Flows and steps keep every field of the JSON object they were decoded from,
// in its original order, so that a document can be rewritten without losing
// keys the pipeline does not interpret.
package model
