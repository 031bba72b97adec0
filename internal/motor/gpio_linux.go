//go:build linux

package motor

import (
	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
)

type rpioPin struct {
	pin rpio.Pin
}

func (p rpioPin) High() { p.pin.High() }

func (p rpioPin) Low() { p.pin.Low() }

// OpenGPIO maps the BCM pins in IN1..IN4 order as outputs, all low. The
// returned close function releases the GPIO memory mapping.
func OpenGPIO(bcm [4]int) (Pins, func() error, error) {
	if err := rpio.Open(); err != nil {
		return Pins{}, nil, errors.Wrap(err, "open gpio")
	}
	var out [4]Pin
	for i, n := range bcm {
		pin := rpio.Pin(n)
		pin.Output()
		pin.Low()
		out[i] = rpioPin{pin: pin}
	}
	return Pins{IN1: out[0], IN2: out[1], IN3: out[2], IN4: out[3]}, rpio.Close, nil
}
