// Package domain contains the core entities and value objects of the
// telemetry network simulation.
//
// This is the innermost layer: it has no dependencies on scheduling,
// logging, or transport concerns and holds only the state values the
// rest of the simulator passes around.
//
// # Entities
//
//   - [DeviceAState], [DeviceBState]: the two field devices' registers
//   - [WatchdogState]: deadline monitor status over device B
//   - [ModuleCResult]: the periodic calculation output
//   - [Stats]: per-stream frame counters and rate estimates
//   - [Snapshot]: one atomic cross-component view of all of the above
//
// All entities are created at process start and live for the process
// lifetime; there is no deletion during normal operation.
package domain
