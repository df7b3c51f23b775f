// Package config defines the settings used by the button presser binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the listen addresses, the path of the persisted
// actuator settings and the actuator driver selection.
package config
