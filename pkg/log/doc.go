// Package log defines the structured logging abstraction used across the
// simulator. The core packages log through [Logger] so they stay free of a
// concrete logging dependency; the CLI wires in the zerolog adapter and
// tests use [NewNoopLogger].
package log
