// Package version exposes build metadata for button-server, button-ctl and
// the firmware host tools.
//
// Version, Commit and BuildTime can be injected with -ldflags. When Commit or
// BuildTime are left empty, Full falls back to the VCS stamp embedded by the
// Go toolchain.
package version
