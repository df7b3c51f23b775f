// Package sequencer runs the actuation loop.
//
// The Sequencer is the only consumer of the command queue and the only owner
// of the actuator driver. For every trigger it snapshots the settings, applies
// the duty cycle, holds the output for the press duration and releases it.
// One sequencer per driver means at most one actuation is in flight.
package sequencer
