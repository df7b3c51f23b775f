// Package queue implements the unbounded command channel between the command
// sources and the actuation sequencer.
//
// Any number of goroutines may Send; exactly one goroutine Receives. Send never
// blocks and never drops an accepted trigger.
package queue
