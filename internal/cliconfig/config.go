package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/rgbloop/pkg/rgbloop"
)

// Config holds CLI configuration for rgbloop.
type Config struct {
	Host     string
	Port     int
	Interval time.Duration
	Sequence string

	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Count        int

	LogLevel    string
	WatchConfig bool
	ProfileAddr string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	d := rgbloop.DefaultConfig()
	return Config{
		Host:         d.Host,
		Port:         d.Port,
		Interval:     d.Interval,
		Sequence:     d.Sequence,
		DialTimeout:  d.DialTimeout,
		WriteTimeout: d.WriteTimeout,
		LogLevel:     "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return c.Library().Validate()
}

// Library converts the CLI configuration to the transmitter configuration.
func (c *Config) Library() rgbloop.Config {
	return rgbloop.Config{
		Host:         c.Host,
		Port:         c.Port,
		Interval:     c.Interval,
		Sequence:     c.Sequence,
		DialTimeout:  c.DialTimeout,
		WriteTimeout: c.WriteTimeout,
		Count:        uint64(c.Count),
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
