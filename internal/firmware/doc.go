// Package firmware is the microcontroller side of the serial actuator driver.
//
// It decodes wire commands, drives one PWM channel and answers OK or ERR.
// The package has no TinyGo dependency; cmd/button-firmware binds it to the
// board peripherals.
package firmware
