//go:build tinygo

// Command button-firmware runs on an RP2040 board and drives the button
// presser output on behalf of the serial actuator driver of button-server.
package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/servo"

	"github.com/oshokin/button-presser/internal/firmware"
)

// outputPin carries the PWM signal to the actuator driver stage.
const outputPin = machine.GP22

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: 115200})

	var pwm servo.PWM = machine.PWM3

	if err := pwm.Configure(machine.PWMConfig{Period: firmware.PeriodNs}); err != nil {
		fail("could not configure PWM: " + err.Error())
	}

	channel, err := pwm.Channel(outputPin)
	if err != nil {
		fail("could not get PWM channel: " + err.Error())
	}

	controller := firmware.New(pwm, channel)

	_, _ = machine.Serial.Write([]byte("# button-firmware ready\n"))

	_ = controller.Serve(machine.Serial, machine.Serial)
}

// fail keeps reporting a fatal setup error; the output was never enabled.
func fail(msg string) {
	for {
		_, _ = machine.Serial.Write([]byte("# " + msg + "\n"))
		time.Sleep(time.Second)
	}
}
