// Package connectors holds the file sources that feed the indexer.
//
// The only source today is filesystem, which walks a local directory.
package connectors
