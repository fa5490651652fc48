package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (RGBLOOP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("RGBLOOP_HOST"), &cfg.Host)
	s.setString("sequence", os.Getenv("RGBLOOP_SEQUENCE"), &cfg.Sequence)
	s.setString("log-level", os.Getenv("RGBLOOP_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("profile-addr", os.Getenv("RGBLOOP_PROFILE_ADDR"), &cfg.ProfileAddr)

	if err := s.setIntFromString("port", os.Getenv("RGBLOOP_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("count", os.Getenv("RGBLOOP_COUNT"), &cfg.Count); err != nil {
		return err
	}

	if err := s.setDuration("interval", os.Getenv("RGBLOOP_INTERVAL"), &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", os.Getenv("RGBLOOP_DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("write-timeout", os.Getenv("RGBLOOP_WRITE_TIMEOUT"), &cfg.WriteTimeout); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("RGBLOOP_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
