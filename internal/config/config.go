// Package config loads optional defaults for sendsubghz from a JSON or YAML
// file. Command-line flags always take precedence over file values.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/sendsubghz/internal/protocol"
	"github.com/banshee-data/sendsubghz/internal/radio"
)

const (
	// DefaultSerialPort is where the USB OOK bridge usually enumerates.
	DefaultSerialPort = "/dev/ttyACM0"

	// MaxPauseUs is the longest pause that still fits in a time.Duration.
	MaxPauseUs = math.MaxInt64 / int64(time.Microsecond)

	defaultRepeat  = 1
	defaultPauseUs = 10000

	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// Config is the root of the configuration file. Every field is optional;
// the Get* accessors supply defaults for anything left unset.
type Config struct {
	Repeat      *int    `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	PauseUs     *int64  `json:"pause_us,omitempty" yaml:"pause_us,omitempty"`
	FrequencyHz *uint64 `json:"frequency_hz,omitempty" yaml:"frequency_hz,omitempty"`

	Serial SerialConfig    `json:"serial" yaml:"serial"`
	Timing protocol.Timing `json:"timing" yaml:"timing"`

	HistoryDB   string `json:"history_db,omitempty" yaml:"history_db,omitempty"`
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// SerialConfig describes the transmitter bridge connection.
type SerialConfig struct {
	Port              string `json:"port,omitempty" yaml:"port,omitempty"`
	radio.PortOptions `yaml:",inline"`
	AckTimeout        string `json:"ack_timeout,omitempty" yaml:"ack_timeout,omitempty"` // duration string like "2s"
}

// Empty returns a Config with nothing set.
func Empty() *Config {
	return &Config{}
}

// Load reads a .json, .yaml or .yml file, validates it and returns it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	if c.Repeat != nil && *c.Repeat < 1 {
		return fmt.Errorf("repeat must be at least 1, got %d", *c.Repeat)
	}
	if c.PauseUs != nil && *c.PauseUs < 0 {
		return fmt.Errorf("pause_us must be non-negative, got %d", *c.PauseUs)
	}
	if c.PauseUs != nil && *c.PauseUs > MaxPauseUs {
		return fmt.Errorf("pause_us must be at most %d, got %d", MaxPauseUs, *c.PauseUs)
	}
	if c.FrequencyHz != nil && *c.FrequencyHz == 0 {
		return fmt.Errorf("frequency_hz must be positive")
	}
	if _, err := c.Serial.PortOptions.Normalize(); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	if c.Serial.AckTimeout != "" {
		d, err := time.ParseDuration(c.Serial.AckTimeout)
		if err != nil {
			return fmt.Errorf("invalid serial.ack_timeout '%s': %w", c.Serial.AckTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("serial.ack_timeout must be positive, got %v", d)
		}
	}
	if c.Timing.EV1527Bits < 0 || c.Timing.KeeloqBits < 0 {
		return fmt.Errorf("timing bit counts must be non-negative")
	}
	return nil
}

// GetRepeat returns the repeat count or the default of 1.
func (c *Config) GetRepeat() int {
	if c.Repeat == nil {
		return defaultRepeat
	}
	return *c.Repeat
}

// GetPause returns the inter-burst pause or the 10ms default.
func (c *Config) GetPause() time.Duration {
	if c.PauseUs == nil {
		return defaultPauseUs * time.Microsecond
	}
	return time.Duration(*c.PauseUs) * time.Microsecond
}

// GetFrequencyOverride returns the configured frequency, or 0 when the
// descriptor's own frequency should be used.
func (c *Config) GetFrequencyOverride() uint64 {
	if c.FrequencyHz == nil {
		return 0
	}
	return *c.FrequencyHz
}

// GetSerialPort returns the bridge device path.
func (c *Config) GetSerialPort() string {
	if c.Serial.Port == "" {
		return DefaultSerialPort
	}
	return c.Serial.Port
}

// GetAckTimeout returns how long to wait for bridge replies beyond the burst.
func (c *Config) GetAckTimeout() time.Duration {
	if c.Serial.AckTimeout == "" {
		return radio.DefaultAckTimeout
	}
	d, err := time.ParseDuration(c.Serial.AckTimeout)
	if err != nil || d <= 0 {
		return radio.DefaultAckTimeout
	}
	return d
}

// GetTiming returns the encoder timing with defaults filled in.
func (c *Config) GetTiming() protocol.Timing {
	return c.Timing.WithDefaults()
}
