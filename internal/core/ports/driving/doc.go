// Package driving provides interfaces for the operations the collector
// pipeline exposes to its callers (primary/inbound ports).
package driving
