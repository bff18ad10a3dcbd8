// Package pipeline runs the scan of a target as a sequence of steps:
// loading the document snapshot, then running the requested criteria.
//
// Each target gets its own pipeline, snapshot and console buffer. The
// BatchProcessor scans several targets concurrently with an errgroup.
package pipeline
