// Package domain defines the core entities of the fragmenter indexer.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceFile: A file discovered during traversal, read once
//   - RawChunk: A natural split of a file produced by a splitter
//   - Chunk: A merged, enriched unit handed to the vector store
//   - Metadata: Scalar key/value pairs carried by chunks
//   - Settings: Explicit configuration threaded into constructors
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
