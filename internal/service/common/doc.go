// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the button server with call
// timeouts, and detects the local username@hostname so presses can be traced
// back to the machine that sent them.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
