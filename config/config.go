// Package config loads the YAML configuration of a host stack and turns it
// into adapter options.
package config

import (
	"io"
	"os"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/mcuadros/go-defaults"
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci/h4"
	"github.com/rigado/gap/hci/socket"
	"github.com/rigado/gap/store"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the adapter configuration.
type Config struct {
	Transport    TransportConfig `yaml:"transport"`
	Log          LogConfig       `yaml:"log"`
	LE           LEConfig        `yaml:"le"`
	LocalName    string          `yaml:"local_name" default:"gap"`
	DeviceClass  uint32          `yaml:"device_class"`
	IOCapability string          `yaml:"io_capability" default:"NoInputNoOutput"`
	// BondFile is where bonds are kept. Empty disables persistence.
	BondFile string `yaml:"bond_file" default:"bonds.json"`
}

// TransportConfig selects how the controller is reached.
type TransportConfig struct {
	Type string `yaml:"type" default:"socket"` // "socket", "serial" or "tcp"

	// socket
	Device int `yaml:"device" default:"-1"`

	// serial
	Port        string `yaml:"port" default:"/dev/ttyACM0"`
	BaudRate    uint   `yaml:"baud_rate" default:"1000000"`
	FlowControl bool   `yaml:"flow_control" default:"true"`

	// tcp
	Address string        `yaml:"address" default:"localhost:9000"`
	Timeout time.Duration `yaml:"timeout" default:"2s"`
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"text"` // "text" or "json"
}

// LEConfig holds the LE scan and connection settings.
type LEConfig struct {
	ScanInterval      time.Duration `yaml:"scan_interval" default:"60ms"`
	ScanWindow        time.Duration `yaml:"scan_window" default:"30ms"`
	ActiveScan        bool          `yaml:"active_scan" default:"true"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout" default:"20s"`
}

var ioCapabilities = map[string]gap.IOCapability{
	"DisplayOnly":     gap.IODisplayOnly,
	"DisplayYesNo":    gap.IODisplayYesNo,
	"KeyboardOnly":    gap.IOKeyboardOnly,
	"NoInputNoOutput": gap.IONoInputNoOutput,
	"KeyboardDisplay": gap.IOKeyboardDisplay,
}

// Default returns a Config filled from the default tags.
func Default() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	return c
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.Transport.Type {
	case "socket":
	case "serial":
		if c.Transport.Port == "" {
			return errors.New("transport.port must not be empty")
		}
		if c.Transport.BaudRate == 0 {
			return errors.New("transport.baud_rate must be > 0")
		}
	case "tcp":
		if c.Transport.Address == "" {
			return errors.New("transport.address must not be empty")
		}
	default:
		return errors.Errorf("transport.type must be socket, serial or tcp, got %q", c.Transport.Type)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if _, ok := ioCapabilities[c.IOCapability]; !ok {
		return errors.Errorf("unknown io_capability %q", c.IOCapability)
	}
	if len(c.LocalName) > 248 {
		return errors.New("local_name is longer than 248 bytes")
	}
	if c.DeviceClass > 0xffffff {
		return errors.Errorf("device_class 0x%x does not fit in 24 bits", c.DeviceClass)
	}
	if c.LE.ScanWindow > c.LE.ScanInterval {
		return errors.Errorf("le.scan_window %v exceeds le.scan_interval %v", c.LE.ScanWindow, c.LE.ScanInterval)
	}
	if c.LE.ConnectionTimeout <= 0 {
		return errors.New("le.connection_timeout must be > 0")
	}
	return nil
}

// Options converts the config into adapter options. l becomes the adapter
// logger when non-nil.
func (c *Config) Options(l gap.Logger) []gap.Option {
	opts := []gap.Option{
		gap.OptIOCapability(ioCapabilities[c.IOCapability]),
		gap.OptLEConnectionTimeout(c.LE.ConnectionTimeout),
		gap.OptScanParams(c.LE.ScanInterval, c.LE.ScanWindow, c.LE.ActiveScan),
	}
	if l != nil {
		opts = append(opts, gap.OptLogger(l))
	}
	if c.LocalName != "" {
		opts = append(opts, gap.OptLocalName(c.LocalName))
	}
	if c.DeviceClass != 0 {
		opts = append(opts, gap.OptDeviceClass(c.DeviceClass))
	}
	if c.BondFile != "" {
		opts = append(opts, gap.OptBondStore(store.New(c.BondFile, l)))
	}
	return opts
}

// NewLogger builds the logrus logger described by the config.
func NewLogger(c *Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	l := logrus.New()
	l.SetLevel(level)
	l.SetOutput(os.Stderr)
	if c.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return l, nil
}

// Open connects to the controller.
func (c *Config) Open() (io.ReadWriteCloser, error) {
	t := c.Transport
	switch t.Type {
	case "socket":
		s, err := socket.NewSocket(t.Device)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "serial":
		return h4.NewSerial(c.SerialOptions())
	case "tcp":
		return h4.NewSocket(t.Address, t.Timeout)
	}
	return nil, errors.Errorf("unknown transport %q", t.Type)
}

// SerialOptions returns the UART settings of a serial transport.
func (c *Config) SerialOptions() serial.OpenOptions {
	opts := h4.DefaultSerialOptions()
	opts.PortName = c.Transport.Port
	opts.BaudRate = c.Transport.BaudRate
	opts.RTSCTSFlowControl = c.Transport.FlowControl
	return opts
}
