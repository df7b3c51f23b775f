// Package settings implements durable storage for the press duration and
// duty cycle.
//
// The FileRepository keeps both values as JSON on disk behind a single mutex
// and exposes the Repository interface the server and the sequencer depend on.
// An unset key is reported as absent, never as a zero value.
package settings
