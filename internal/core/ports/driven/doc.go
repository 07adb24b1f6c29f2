// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the embedding provider, the document
// index backend, the file system, and the chunker strategies.
package driven
