package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rigado/gap"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, "socket", c.Transport.Type)
	assert.Equal(t, -1, c.Transport.Device)
	assert.Equal(t, uint(1000000), c.Transport.BaudRate)
	assert.True(t, c.Transport.FlowControl)
	assert.Equal(t, 2*time.Second, c.Transport.Timeout)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, 60*time.Millisecond, c.LE.ScanInterval)
	assert.Equal(t, 30*time.Millisecond, c.LE.ScanWindow)
	assert.True(t, c.LE.ActiveScan)
	assert.Equal(t, 20*time.Second, c.LE.ConnectionTimeout)
	assert.Equal(t, "NoInputNoOutput", c.IOCapability)
	assert.Equal(t, "bonds.json", c.BondFile)
	assert.Zero(t, c.DeviceClass)
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "gap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
transport:
  type: serial
  port: /dev/ttyUSB1
  baud_rate: 115200
  flow_control: false
log:
  level: debug
  format: json
le:
  active_scan: false
  scan_interval: 100ms
local_name: sensor-hub
device_class: 0x5a020c
io_capability: DisplayYesNo
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "serial", c.Transport.Type)
	assert.Equal(t, "/dev/ttyUSB1", c.Transport.Port)
	assert.Equal(t, uint(115200), c.Transport.BaudRate)
	assert.False(t, c.Transport.FlowControl)
	assert.Equal(t, "debug", c.Log.Level)
	assert.False(t, c.LE.ActiveScan)
	assert.Equal(t, 100*time.Millisecond, c.LE.ScanInterval)
	assert.Equal(t, 30*time.Millisecond, c.LE.ScanWindow)
	assert.Equal(t, "sensor-hub", c.LocalName)
	assert.Equal(t, uint32(0x5a020c), c.DeviceClass)
	assert.Equal(t, "DisplayYesNo", c.IOCapability)
	assert.Equal(t, "bonds.json", c.BondFile)

	opts := c.SerialOptions()
	assert.Equal(t, "/dev/ttyUSB1", opts.PortName)
	assert.Equal(t, uint(115200), opts.BaudRate)
	assert.False(t, opts.RTSCTSFlowControl)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "transport: [nope"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "transport:\n  type: usb\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(c *Config)
	}{
		{"transport", func(c *Config) { c.Transport.Type = "usb" }},
		{"serial port", func(c *Config) { c.Transport.Type, c.Transport.Port = "serial", "" }},
		{"baud rate", func(c *Config) { c.Transport.Type, c.Transport.BaudRate = "serial", 0 }},
		{"tcp address", func(c *Config) { c.Transport.Type, c.Transport.Address = "tcp", "" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"io capability", func(c *Config) { c.IOCapability = "Telepathy" }},
		{"local name", func(c *Config) { c.LocalName = string(make([]byte, 249)) }},
		{"device class", func(c *Config) { c.DeviceClass = 0x1000000 }},
		{"scan window", func(c *Config) { c.LE.ScanWindow = 2 * c.LE.ScanInterval }},
		{"connection timeout", func(c *Config) { c.LE.ConnectionTimeout = 0 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

// recorder captures the settings applied by options.
type recorder struct {
	logger     gap.Logger
	io         gap.IOCapability
	timeout    time.Duration
	name       string
	class      uint32
	interval   time.Duration
	window     time.Duration
	active     bool
	bonds      interface{}
	gatt       interface{}
	errHandler func(error)
}

func (r *recorder) SetLogger(l gap.Logger) error                 { r.logger = l; return nil }
func (r *recorder) SetIOCapability(c gap.IOCapability) error     { r.io = c; return nil }
func (r *recorder) SetLEConnectionTimeout(d time.Duration) error { r.timeout = d; return nil }
func (r *recorder) SetLocalName(n string) error                  { r.name = n; return nil }
func (r *recorder) SetDeviceClass(c uint32) error                { r.class = c; return nil }
func (r *recorder) SetBondStore(s interface{}) error             { r.bonds = s; return nil }
func (r *recorder) SetGATT(g interface{}) error                  { r.gatt = g; return nil }
func (r *recorder) SetErrorHandler(fn func(error)) error         { r.errHandler = fn; return nil }

func (r *recorder) SetScanParams(interval, window time.Duration, active bool) error {
	r.interval, r.window, r.active = interval, window, active
	return nil
}

func TestOptions(t *testing.T) {
	c := Default()
	c.IOCapability = "KeyboardDisplay"
	c.DeviceClass = 0x240404
	c.BondFile = filepath.Join(t.TempDir(), "bonds.json")

	l := gap.NewLogger(logrus.New())
	var r recorder
	for _, opt := range c.Options(l) {
		require.NoError(t, opt(&r))
	}

	assert.Equal(t, l, r.logger)
	assert.Equal(t, gap.IOKeyboardDisplay, r.io)
	assert.Equal(t, 20*time.Second, r.timeout)
	assert.Equal(t, "gap", r.name)
	assert.Equal(t, uint32(0x240404), r.class)
	assert.Equal(t, 60*time.Millisecond, r.interval)
	assert.Equal(t, 30*time.Millisecond, r.window)
	assert.True(t, r.active)
	assert.NotNil(t, r.bonds)
	assert.Nil(t, r.gatt)
}

func TestOptionsWithoutPersistence(t *testing.T) {
	c := Default()
	c.BondFile = ""
	c.LocalName = ""

	var r recorder
	for _, opt := range c.Options(nil) {
		require.NoError(t, opt(&r))
	}
	assert.Nil(t, r.bonds)
	assert.Nil(t, r.logger)
	assert.Empty(t, r.name)
	assert.Zero(t, r.class)
}

func TestNewLogger(t *testing.T) {
	c := Default()
	c.Log.Level = "warn"
	c.Log.Format = "json"

	l, err := NewLogger(c)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	c.Log.Format = "text"
	l, err = NewLogger(c)
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	c.Log.Level = "loud"
	_, err = NewLogger(c)
	assert.Error(t, err)
}
