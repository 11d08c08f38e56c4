// Package app contains the pipeline orchestrator: it schedules the
// periodic producers against the virtual clock, routes every frame
// through the codec-validating handler, maintains the shared live-state
// snapshot and statistics, and exposes the synchronous command surface
// consumed by the embedding API.
package app
