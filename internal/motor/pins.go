package motor

import (
	"log/slog"
)

// LogPin stands in for a GPIO line when there is no hardware.
type LogPin struct {
	Name   string
	Logger *slog.Logger
}

func (p LogPin) High() { p.Logger.Debug("pin high", "pin", p.Name) }

func (p LogPin) Low() { p.Logger.Debug("pin low", "pin", p.Name) }

// DryRunPins returns four LogPins named after their bridge inputs.
func DryRunPins(logger *slog.Logger) Pins {
	return Pins{
		IN1: LogPin{Name: "IN1", Logger: logger},
		IN2: LogPin{Name: "IN2", Logger: logger},
		IN3: LogPin{Name: "IN3", Logger: logger},
		IN4: LogPin{Name: "IN4", Logger: logger},
	}
}
