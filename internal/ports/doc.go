// Package ports defines the interfaces that connect the simulation core
// to its collaborators.
//
// # Port Interfaces
//
//   - [Device]: a periodic frame producer that may accept inbound frames
//   - [FrameSink]: subscriber hook receiving every raw encoded frame
//   - [StatsObserver]: metrics hook fed by the pipeline statistics
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces;
// concrete implementations live in internal/device and
// internal/adapters. This keeps the orchestration logic testable with
// fakes and lets new device variants plug in without a type hierarchy.
package ports
