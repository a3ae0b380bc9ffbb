// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Chunk production composes the classifier, splitters, merge engine and
// metadata enricher directly. These are pure packages with no I/O.
package services
