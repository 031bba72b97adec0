package client

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotOpen matches every *NotOpenError.
	ErrNotOpen = errors.New("websocket is not open")

	ErrAlreadyConnected = errors.New("websocket connect already called")
)

// NotOpenError is reported when Send is called outside the Open state.
type NotOpenError struct {
	State State
}

func (e *NotOpenError) Error() string {
	return fmt.Sprintf("send while %s: %v", e.State, ErrNotOpen)
}

func (e *NotOpenError) Is(target error) bool {
	return target == ErrNotOpen
}

// ConnectionError wraps a transport failure: a failed dial, an abnormal
// read or a failed write.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
