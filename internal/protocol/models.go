package protocol

const MESSAGE_TYPE_CMD = "cmd"

// Key is a direction key carried in a command payload.
type Key string

const (
	KEY_W Key = "W"
	KEY_A Key = "A"
	KEY_S Key = "S"
	KEY_D Key = "D"
)

// KEY_STOP is understood by the robot but never produced from the keyboard.
const KEY_STOP Key = "STOP"

var DirectionKeys = []Key{KEY_W, KEY_A, KEY_S, KEY_D}

// IsDirection reports whether k is one of W, A, S, D. The comparison is
// exact; callers normalize case first.
func IsDirection(k Key) bool {
	switch k {
	case KEY_W, KEY_A, KEY_S, KEY_D:
		return true
	}
	return false
}

// Command is the frame sent for one key press.
type Command struct {
	Type    string `json:"type"`
	Payload Key    `json:"payload"`
}

func NewCommand(key Key) Command {
	return Command{
		Type:    MESSAGE_TYPE_CMD,
		Payload: key,
	}
}
