package rgbloop

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bft-labs/rgbloop/internal/domain"
)

// Defaults match the LED receiver on the bench network.
const (
	DefaultHost         = "192.168.2.94"
	DefaultPort         = 9000
	DefaultInterval     = time.Second
	DefaultDialTimeout  = 10 * time.Second
	DefaultWriteTimeout = 5 * time.Second
	DefaultSequence     = domain.DefaultSequence
)

// Config holds the transmitter configuration.
type Config struct {
	// Host and Port locate the receiver.
	Host string
	Port int

	// Interval is the pause after every send.
	Interval time.Duration

	// Sequence is sent round-robin. Plain text is used byte for byte;
	// "hex:000102" gives raw values.
	Sequence string

	// DialTimeout bounds the single connect attempt.
	DialTimeout time.Duration

	// WriteTimeout bounds each write. Zero disables it.
	WriteTimeout time.Duration

	// Count stops after that many sends. Zero sends forever.
	Count uint64
}

// DefaultConfig returns a Config with the default receiver and timings.
func DefaultConfig() Config {
	return Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		Interval:     DefaultInterval,
		Sequence:     DefaultSequence,
		DialTimeout:  DefaultDialTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// SetDefaults fills zero-valued fields with defaults.
// Count and WriteTimeout keep their zero meaning.
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Sequence == "" {
		c.Sequence = DefaultSequence
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("%w: dial timeout must be positive", ErrInvalidConfig)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("%w: write timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := domain.ParseSequence(c.Sequence); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Address returns host:port of the receiver.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
