// Package client implements the button-ctl subcommands.
//
// Each subcommand loads the YAML config, dials the button server over gRPC
// and prints a short human readable result.
package client
