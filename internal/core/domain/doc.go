// Package domain contains the core types of the collector pipeline:
// files discovered on disk, the chunks cut from their extracted text,
// the documents persisted to the search index, and the bookkeeping
// records used for change detection and orphan cleanup.
package domain
