package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing address.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Bad address.
	cfg = &Config{
		GRPCAddress: "bad:address",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Bad HTTP address.
	cfg = &Config{
		GRPCAddress: "127.0.0.1:0",
		HTTPAddress: "nope:nope",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Defaults.
	cfg = &Config{
		GRPCAddress: "127.0.0.1:0",
	}

	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultSettingsFilename, cfg.SettingsFile)
	require.Equal(t, DriverSimulated, cfg.Driver.Kind)
	require.Equal(t, DefaultFrequencyHz, cfg.Driver.FrequencyHz)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, DefaultLogFormat, cfg.LogFormat)
}

// TestValidateDriver covers driver kind specific rules.
func TestValidateDriver(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		GRPCAddress: "127.0.0.1:0",
		Driver:      Driver{Kind: DriverSerial},
	}
	require.ErrorIs(t, Validate(cfg), errSerialPortRequired)

	cfg.Driver.SerialPort = "/dev/ttyACM0"
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultBaudRate, cfg.Driver.BaudRate)

	cfg.Driver = Driver{Kind: DriverSysfs}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultSysfsChip, cfg.Driver.SysfsChip)

	cfg.Driver = Driver{Kind: "gpio"}
	require.ErrorIs(t, Validate(cfg), errUnknownDriver)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		GRPCAddress: "127.0.0.1:50051",
		HTTPAddress: "127.0.0.1:8080",
		Driver: Driver{
			Kind:       DriverSerial,
			SerialPort: "/dev/ttyUSB0",
			BaudRate:   9600,
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.GRPCAddress, loaded.GRPCAddress)
	require.Equal(t, cfg.HTTPAddress, loaded.HTTPAddress)
	require.Equal(t, cfg.Driver, loaded.Driver)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.Error(t, Save(path, nil))
}
