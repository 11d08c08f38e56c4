// Package device implements the emulated field devices of the telemetry
// network: device A (status-only producer), device B (producer with
// control and watchdog registers) and the watchdog deadline monitor.
//
// Devices are pure state machines over virtual time: every method takes
// the current virtual instant as a parameter, so the package has no
// timer or goroutine of its own. Scheduling belongs to internal/app.
package device
