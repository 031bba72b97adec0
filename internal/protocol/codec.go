package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrEmptyFrame = errors.New("empty frame")

// Encode returns the text frame for c.
func Encode(c Command) (string, error) {
	if c.Type == "" {
		return "", errors.New("trying to encode command without type")
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "marshal command")
	}
	return string(b), nil
}

// Decode parses a text frame. It does not check Type or Payload; the robot
// decides what it understands.
func Decode(frame []byte) (Command, error) {
	if len(frame) == 0 {
		return Command{}, ErrEmptyFrame
	}
	var c Command
	if err := json.Unmarshal(frame, &c); err != nil {
		return Command{}, errors.Wrap(err, "unmarshal command")
	}
	return c, nil
}
