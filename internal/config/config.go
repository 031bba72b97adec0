// Package config loads settings shared by the teleop client and the robot
// daemon.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// ROBOT_* environment variables, then command-line flags. The config file
// path comes from --config or ROBOT_CONFIG; without one only defaults,
// environment and flags apply.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint = "ws://localhost:9001"
	DefaultListen   = "0.0.0.0:9001"
	DefaultLogLevel = "info"

	envPrefix     = "ROBOT"
	envConfigPath = "ROBOT_CONFIG"
)

// MotorConfig maps the four H-bridge inputs to BCM GPIO numbers. IN1/IN2
// drive motor A, IN3/IN4 drive motor B.
type MotorConfig struct {
	IN1 int `yaml:"in1" envconfig:"IN1"`
	IN2 int `yaml:"in2" envconfig:"IN2"`
	IN3 int `yaml:"in3" envconfig:"IN3"`
	IN4 int `yaml:"in4" envconfig:"IN4"`

	// DryRun logs pin changes instead of touching GPIO.
	DryRun bool `yaml:"dry_run" envconfig:"DRY_RUN"`
}

// Pins returns the pin numbers in IN1..IN4 order.
func (m MotorConfig) Pins() [4]int {
	return [4]int{m.IN1, m.IN2, m.IN3, m.IN4}
}

type Config struct {
	// Endpoint is the robot address the client connects to.
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`

	// Listen is the address the robot daemon binds.
	Listen string `yaml:"listen" envconfig:"LISTEN"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	Motor MotorConfig `yaml:"motor" envconfig:"MOTOR"`
}

// Default returns a Config with every field at its built-in value.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads path (may be empty), overlays the environment and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %q", path)
		}
		if err := decodeYAML(content, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %q", path)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}

	cfg.sanitize()
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(content []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// AddFlags registers the flags understood by FromFlags.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to YAML config file (env "+envConfigPath+")")
	fs.String("endpoint", "", "robot websocket address (default "+DefaultEndpoint+")")
	fs.String("listen", "", "robot daemon listen address (default "+DefaultListen+")")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Bool("dry-run", false, "log motor pin changes instead of driving GPIO")
}

// FromFlags loads the config named by --config or ROBOT_CONFIG and applies
// any flags the user set explicitly.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	path, _ := fs.GetString("config")
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if fs.Changed("endpoint") {
		cfg.Endpoint, _ = fs.GetString("endpoint")
	}
	if fs.Changed("listen") {
		cfg.Listen, _ = fs.GetString("listen")
	}
	if fs.Changed("log-level") {
		cfg.LogLevel, _ = fs.GetString("log-level")
	}
	if fs.Changed("dry-run") {
		cfg.Motor.DryRun, _ = fs.GetBool("dry-run")
	}

	cfg.sanitize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level returns the slog level for LogLevel. validate guarantees it parses.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) sanitize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Listen = strings.TrimSpace(c.Listen)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func (c *Config) setDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	// Pin 0 is a valid BCM number but never used by the wiring this
	// targets, so zero means unset. A partial map is left for validate.
	if c.Motor.Pins() == [4]int{} {
		c.Motor.IN1, c.Motor.IN2 = 17, 18
		c.Motor.IN3, c.Motor.IN4 = 27, 22
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return errors.Wrapf(err, "config error: invalid endpoint %q", c.Endpoint)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.Errorf("config error: endpoint %q must use ws:// or wss://", c.Endpoint)
	}
	if u.Host == "" {
		return errors.Errorf("config error: endpoint %q has no host", c.Endpoint)
	}

	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return errors.Wrapf(err, "config error: invalid listen address %q", c.Listen)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return errors.Errorf("config error: unknown log level %q", c.LogLevel)
	}

	seen := make(map[int]bool, 4)
	for i, pin := range c.Motor.Pins() {
		if pin == 0 {
			return errors.Errorf("config error: incomplete motor pin map, in%d is unset", i+1)
		}
		if pin < 0 || pin > 27 {
			return errors.Errorf("config error: motor pin %d out of range 0-27", pin)
		}
		if seen[pin] {
			return errors.Errorf("config error: motor pin %d assigned twice", pin)
		}
		seen[pin] = true
	}
	return nil
}
