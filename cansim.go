// Package cansim provides a convenience facade over the embeddable
// simulator in pkg/cansim.
//
// Example usage:
//
//	cfg := cansim.DefaultConfig()
//	cfg.Scale = 0.5
//	if err := cansim.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package cansim

import (
	"context"
	"time"

	sim "github.com/canlab/cansim/pkg/cansim"
)

// Config holds the configuration for the simulator.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = sim.Config

// Option configures optional behavior of a simulator instance.
type Option = sim.Option

// Sim is a running simulator instance. See pkg/cansim for the full
// API surface.
type Sim = sim.Sim

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return sim.DefaultConfig()
}

// New creates a simulator instance without starting it.
func New(cfg Config, opts ...Option) (*Sim, error) {
	return sim.New(cfg, opts...)
}

// Run starts the simulator with the given configuration and blocks
// until the context is cancelled or the virtual clock is halted, then
// shuts down gracefully.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	s, err := sim.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return s.Stop()
		case <-ticker.C:
			switch s.Status() {
			case sim.StateStopped, sim.StateCrashed:
				return nil
			}
		}
	}
}
