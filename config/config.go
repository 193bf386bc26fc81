package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/LoveWonYoung/passthru/j2534"
	"github.com/LoveWonYoung/passthru/payload"
)

// Ioctl is an ioctl issued right after the channel connects.
type Ioctl struct {
	ID uint32 `yaml:"id"`
	// Payload is a hex string passed to the driver unchanged.
	Payload string `yaml:"payload,omitempty"`
}

// Config defines a PassThru session for the passthru tool.
type Config struct {
	// DriverPath is the vendor J2534 DLL, e.g. C:\Program Files\...\op20pt32.dll.
	DriverPath string `yaml:"driver_path"`

	ProtocolID   uint32 `yaml:"protocol_id"`
	ConnectFlags uint32 `yaml:"connect_flags"`
	BaudRate     uint32 `yaml:"baud_rate"`

	// TimeoutMs bounds every read and write call. 0 makes reads
	// non-blocking.
	TimeoutMs uint32 `yaml:"timeout_ms"`
	// ReadBatch is the buffer capacity handed to each read (1..16).
	ReadBatch int `yaml:"read_batch"`
	// Listen is how long to keep reading after sending.
	Listen time.Duration `yaml:"listen"`

	// TxFlags is applied to every message sent.
	TxFlags uint32 `yaml:"tx_flags"`
	// TxPrefix is prepended to every payload, typically the CAN id.
	TxPrefix string `yaml:"tx_prefix,omitempty"`
	// BlockSize splits Intel HEX images into messages.
	BlockSize int `yaml:"block_size"`

	Ioctls []Ioctl `yaml:"ioctls,omitempty"`

	LogLevel   string `yaml:"log_level"`
	LogDir     string `yaml:"log_dir,omitempty"`
	CaptureDir string `yaml:"capture_dir,omitempty"`
}

// DefaultConfig returns an ISO15765 channel at 500 kbit/s.
func DefaultConfig() Config {
	return Config{
		ProtocolID:   j2534.ISO15765,
		ConnectFlags: 0,
		BaudRate:     500000,
		TimeoutMs:    1000,
		ReadBatch:    j2534.MaxReadBatch,
		Listen:       2 * time.Second,
		BlockSize:    4096,
		LogLevel:     "info",
	}
}

// Load reads a YAML file on top of DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields the bridge cannot check for itself.
func (c *Config) Validate() error {
	var errs []error
	if c.DriverPath == "" {
		errs = append(errs, errors.New("driver_path is required"))
	}
	if c.ProtocolID == 0 {
		errs = append(errs, errors.New("protocol_id is required"))
	}
	if c.BaudRate == 0 {
		errs = append(errs, errors.New("baud_rate must be positive"))
	}
	if c.ReadBatch < 1 || c.ReadBatch > j2534.MaxReadBatch {
		errs = append(errs, fmt.Errorf("read_batch must be within 1..%d", j2534.MaxReadBatch))
	}
	if c.Listen < 0 {
		errs = append(errs, errors.New("listen must not be negative"))
	}
	if c.BlockSize < 1 {
		errs = append(errs, errors.New("block_size must be positive"))
	}
	prefix, err := payload.ParseHex(c.TxPrefix)
	if err != nil {
		errs = append(errs, fmt.Errorf("tx_prefix: %w", err))
	} else if c.BlockSize+len(prefix) > j2534.DataCapacity {
		errs = append(errs, fmt.Errorf("block_size plus tx_prefix exceeds %d bytes", j2534.DataCapacity))
	}
	for i, io := range c.Ioctls {
		if _, err := payload.ParseHex(io.Payload); err != nil {
			errs = append(errs, fmt.Errorf("ioctls[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
