package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Interval     string `toml:"interval"`
	Sequence     string `toml:"sequence"`
	DialTimeout  string `toml:"dial_timeout"`
	WriteTimeout string `toml:"write_timeout"`
	Count        int    `toml:"count"`
	LogLevel     string `toml:"log_level"`
	WatchConfig  *bool  `toml:"watch_config"`
	ProfileAddr  string `toml:"profile_addr"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.rgbloop/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".rgbloop", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("sequence", fc.Sequence, &cfg.Sequence)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("profile-addr", fc.ProfileAddr, &cfg.ProfileAddr)

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("count", fc.Count, &cfg.Count)

	if err := s.setDuration("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("write-timeout", fc.WriteTimeout, &cfg.WriteTimeout); err != nil {
		return err
	}

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
