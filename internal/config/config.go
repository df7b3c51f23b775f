package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of the button presser binaries.
type Config struct {
	// GRPCAddress is the gRPC control API address.
	GRPCAddress string `yaml:"grpc_addr"`
	// HTTPAddress is the listen address of the plain HTTP surface. Empty disables it.
	HTTPAddress string `yaml:"http_addr"`
	// SettingsFile is the path to the JSON file storing press duration and duty cycle.
	SettingsFile string `yaml:"settings_file"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level written by the logger.
	LogLevel string `yaml:"log_level"`
	// LogFormat is "console" or "json".
	LogFormat string `yaml:"log_format"`
	// Driver selects and configures the actuator backend.
	Driver Driver `yaml:"driver"`
}

// Driver configures the PWM output the sequencer drives.
type Driver struct {
	// Kind is one of DriverSimulated, DriverSysfs or DriverSerial.
	Kind string `yaml:"kind"`
	// SysfsChip is the pwmchip directory used by the sysfs driver.
	SysfsChip string `yaml:"sysfs_chip"`
	// SysfsChannel is the PWM channel index on SysfsChip.
	SysfsChannel int `yaml:"sysfs_channel"`
	// FrequencyHz is the PWM frequency for the sysfs driver.
	FrequencyHz int `yaml:"frequency_hz"`
	// SerialPort is the device path of the firmware serial port.
	SerialPort string `yaml:"serial_port"`
	// BaudRate is the serial port speed.
	BaudRate int `yaml:"baud_rate"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "button-presser-settings.yaml"

	// DefaultSettingsFilename is the default filename for persisted actuator settings.
	DefaultSettingsFilename = "button-presser-state.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// DefaultLogLevel is used when log_level is not set.
	DefaultLogLevel = "info"

	// DefaultLogFormat is used when log_format is not set.
	DefaultLogFormat = "console"

	// DefaultFrequencyHz matches a hobby servo/solenoid driver.
	DefaultFrequencyHz = 50

	// DefaultBaudRate is the firmware serial speed.
	DefaultBaudRate = 115200

	// DefaultSysfsChip is the first PWM controller on most Linux boards.
	DefaultSysfsChip = "/sys/class/pwm/pwmchip0"
)

// Supported driver kinds.
const (
	DriverSimulated = "simulated"
	DriverSysfs     = "sysfs"
	DriverSerial    = "serial"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errGRPCAddressRequired is returned when the gRPC address is missing.
	errGRPCAddressRequired = errors.New("gRPC address must be provided")
	// errUnknownDriver is returned for an unsupported driver kind.
	errUnknownDriver = errors.New("unknown driver kind")
	// errSerialPortRequired is returned when the serial driver has no port.
	errSerialPortRequired = errors.New("serial port must be provided for the serial driver")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.GRPCAddress == "" {
		return errGRPCAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.GRPCAddress); err != nil {
		return fmt.Errorf("invalid gRPC address: %w", err)
	}

	if cfg.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.HTTPAddress); err != nil {
			return fmt.Errorf("invalid HTTP address: %w", err)
		}
	}

	// Set default timeout if not specified
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.SettingsFile == "" {
		cfg.SettingsFile = DefaultSettingsFilename
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}

	return validateDriver(&cfg.Driver)
}

func validateDriver(d *Driver) error {
	if d.Kind == "" {
		d.Kind = DriverSimulated
	}

	if d.FrequencyHz <= 0 {
		d.FrequencyHz = DefaultFrequencyHz
	}

	switch d.Kind {
	case DriverSimulated:
		return nil
	case DriverSysfs:
		if d.SysfsChip == "" {
			d.SysfsChip = DefaultSysfsChip
		}

		if d.SysfsChannel < 0 {
			return fmt.Errorf("invalid sysfs channel %d", d.SysfsChannel)
		}

		return nil
	case DriverSerial:
		if d.SerialPort == "" {
			return errSerialPortRequired
		}

		if d.BaudRate <= 0 {
			d.BaudRate = DefaultBaudRate
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, d.Kind)
	}
}
