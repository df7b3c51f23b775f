// Package actuator contains core domain types for the button presser.
//
// It defines the two persisted setting keys, the settings Snapshot an actuation
// runs with, the transient sequencer State, the Trigger signal and the error
// taxonomy shared by the store, the queue, the drivers and the transports.
package actuator
