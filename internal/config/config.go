package config

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"
)

// SenderConfig holds runtime configuration for the sender binary.
type SenderConfig struct {
	Host         string
	Port         int
	FPS          int
	Quality      int
	MaxWidth     int
	DisplayIndex int
	Adaptive     bool
	Verbose      bool
}

// ParseSenderFlags parses flags for the sender binary.
func ParseSenderFlags() *SenderConfig {
	cfg := &SenderConfig{}
	flag.StringVar(&cfg.Host, "host", "localhost", "Receiver IP address or hostname")
	flag.IntVar(&cfg.Port, "port", 9001, "Receiver TCP port")
	flag.IntVar(&cfg.FPS, "fps", 30, "Target frames per second")
	flag.IntVar(&cfg.Quality, "quality", 80, "JPEG quality (1-100)")
	flag.IntVar(&cfg.MaxWidth, "max-width", 1280, "Downscale frames wider than this")
	flag.IntVar(&cfg.DisplayIndex, "display", 0, "Display index to capture (0 = primary)")
	flag.BoolVar(&cfg.Adaptive, "adaptive", false, "Adapt JPEG quality to the achievable frame rate")
	flag.BoolVar(&cfg.Verbose, "v", false, "Enable debug logging")
	flag.Parse()
	return cfg
}

// Validate checks all values once at startup, before the pipeline runs.
func (c *SenderConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if err := validatePort(c.Port); err != nil {
		return err
	}
	if c.FPS < 1 || c.FPS > 60 {
		return fmt.Errorf("fps must be 1-60, got %d", c.FPS)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be 1-100, got %d", c.Quality)
	}
	if c.MaxWidth < 160 {
		return fmt.Errorf("max-width must be at least 160, got %d", c.MaxWidth)
	}
	if c.DisplayIndex < 0 {
		return fmt.Errorf("display index must not be negative, got %d", c.DisplayIndex)
	}
	return nil
}

// Interval returns the target frame interval.
func (c *SenderConfig) Interval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Addr returns the receiver address in host:port form.
func (c *SenderConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReceiverConfig holds runtime configuration for the receiver binary.
type ReceiverConfig struct {
	Host    string
	Port    int
	Verbose bool
}

// ParseReceiverFlags parses flags for the receiver binary.
func ParseReceiverFlags() *ReceiverConfig {
	cfg := &ReceiverConfig{}
	flag.StringVar(&cfg.Host, "host", "0.0.0.0", "Address to listen on")
	flag.IntVar(&cfg.Port, "port", 9001, "TCP port to listen on")
	flag.BoolVar(&cfg.Verbose, "v", false, "Enable debug logging")
	flag.Parse()
	return cfg
}

// Validate checks all values once at startup.
func (c *ReceiverConfig) Validate() error {
	return validatePort(c.Port)
}

// Addr returns the listen address in host:port form.
func (c *ReceiverConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", port)
	}
	return nil
}
