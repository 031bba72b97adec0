//go:build !linux

package motor

import "github.com/pkg/errors"

// OpenGPIO is only available on linux; run with --dry-run elsewhere.
func OpenGPIO(bcm [4]int) (Pins, func() error, error) {
	return Pins{}, nil, errors.New("gpio is only supported on linux")
}
