// Package motor drives two DC motors through an L293D-style H-bridge whose
// enable pins are tied high. Each motor has two inputs; setting one high and
// the other low spins it one way, both low stops it.
package motor

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/0ya-sh0/GoWASD/internal/protocol"
)

var ErrUnknownCommand = errors.New("unknown command")

// Pin is one GPIO output.
type Pin interface {
	High()
	Low()
}

// Pins holds the bridge inputs: IN1/IN2 for motor A, IN3/IN4 for motor B.
type Pins struct {
	IN1, IN2, IN3, IN4 Pin
}

// Controller is safe for concurrent use; commands from several connections
// are applied one at a time.
type Controller struct {
	mu   sync.Mutex
	pins Pins
}

func NewController(pins Pins) *Controller {
	return &Controller{pins: pins}
}

func (c *Controller) set(in1, in2, in3, in4 bool) {
	for _, p := range []struct {
		pin  Pin
		high bool
	}{{c.pins.IN1, in1}, {c.pins.IN2, in2}, {c.pins.IN3, in3}, {c.pins.IN4, in4}} {
		if p.high {
			p.pin.High()
		} else {
			p.pin.Low()
		}
	}
}

// Forward drives both motors forward.
func (c *Controller) Forward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(true, false, true, false)
}

// Backward drives both motors backward.
func (c *Controller) Backward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(false, true, false, true)
}

// TurnLeft runs the left motor backward and the right motor forward.
func (c *Controller) TurnLeft() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(false, true, true, false)
}

// TurnRight runs the left motor forward and the right motor backward.
func (c *Controller) TurnRight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(true, false, false, true)
}

// Stop pulls every input low.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(false, false, false, false)
}

// Execute runs the motion named by a command payload.
func (c *Controller) Execute(key protocol.Key) error {
	switch key {
	case protocol.KEY_W:
		c.Forward()
	case protocol.KEY_S:
		c.Backward()
	case protocol.KEY_A:
		c.TurnLeft()
	case protocol.KEY_D:
		c.TurnRight()
	case protocol.KEY_STOP:
		c.Stop()
	default:
		return errors.Wrapf(ErrUnknownCommand, "%q", key)
	}
	return nil
}
