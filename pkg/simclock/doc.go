// Package simclock provides the process-wide virtual clock that drives
// every periodic component of the simulation.
//
// Virtual time advances at 1/scale of real time: scale 1 is real time,
// scale 2 runs the simulation at half speed, scale 0.5 at double speed.
// The clock can be frozen (virtual time pinned, reversible) or halted
// (terminal). Scale changes and freeze transitions flush the currently
// accrued virtual time into an accumulated offset first, so time never
// jumps backward or double-counts across a transition.
package simclock
