// Package watcher implements button-ctl watch, a status poller that prints
// every change of the actuator state, its counters and the queue depth.
package watcher
