package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoveWonYoung/passthru/j2534"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, j2534.ISO15765, c.ProtocolID)
	assert.Equal(t, uint32(500000), c.BaudRate)
	assert.Equal(t, j2534.MaxReadBatch, c.ReadBatch)

	// Only the driver path is missing.
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver_path")

	c.DriverPath = "op20pt32.dll"
	assert.NoError(t, c.Validate())
}

func TestLoad(t *testing.T) {
	yamlData := `
driver_path: C:\Drivers\op20pt32.dll
protocol_id: 5
baud_rate: 250000
timeout_ms: 200
listen: 500ms
tx_prefix: "00 00 07 DF"
ioctls:
  - id: 8
  - id: 2
    payload: "01 00 00 00"
log_level: debug
`
	path := filepath.Join(t.TempDir(), "passthru.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, `C:\Drivers\op20pt32.dll`, c.DriverPath)
	assert.Equal(t, j2534.CAN, c.ProtocolID)
	assert.Equal(t, uint32(250000), c.BaudRate)
	assert.Equal(t, uint32(200), c.TimeoutMs)
	assert.Equal(t, 500*time.Millisecond, c.Listen)
	assert.Equal(t, "debug", c.LogLevel)
	require.Len(t, c.Ioctls, 2)
	assert.Equal(t, j2534.CLEAR_RX_BUFFER, c.Ioctls[0].ID)
	assert.Equal(t, "01 00 00 00", c.Ioctls[1].Payload)

	// Defaults survive for keys the file omits.
	assert.Equal(t, j2534.MaxReadBatch, c.ReadBatch)
	assert.NoError(t, c.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("protocol_id: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"read batch zero", func(c *Config) { c.ReadBatch = 0 }, "read_batch"},
		{"read batch too big", func(c *Config) { c.ReadBatch = 17 }, "read_batch"},
		{"no protocol", func(c *Config) { c.ProtocolID = 0 }, "protocol_id"},
		{"no baud", func(c *Config) { c.BaudRate = 0 }, "baud_rate"},
		{"negative listen", func(c *Config) { c.Listen = -time.Second }, "listen"},
		{"bad prefix", func(c *Config) { c.TxPrefix = "zz" }, "tx_prefix"},
		{"block too big", func(c *Config) { c.TxPrefix = "00 00 07 DF"; c.BlockSize = j2534.DataCapacity }, "block_size"},
		{"bad ioctl payload", func(c *Config) { c.Ioctls = []Ioctl{{ID: 2, Payload: "0"}} }, "ioctls[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			c.DriverPath = "driver.dll"
			tt.modify(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
