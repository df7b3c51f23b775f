// Package actuator abstracts the PWM output that presses the button.
//
// A Driver sets the duty cycle, enables and disables the output. Backends:
//   - Simulated logs and records every call,
//   - Sysfs drives a Linux /sys/class/pwm channel,
//   - Serial talks the wire protocol to the button firmware over a serial port.
//
// A driver is owned by exactly one goroutine (the sequencer) and is not safe
// for concurrent use.
package actuator
