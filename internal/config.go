package internal

import (
	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 9999
	DefaultDataFile = "data.db"
)

// Config carries the daemon and client settings. All fields can be set from
// a TOML file; flags override whatever the file provides.
type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	DataFile string `toml:"data_file"`

	// MetricsAddr is the optional HTTP listen address for the Prometheus
	// /metrics endpoint. Empty disables the endpoint.
	MetricsAddr string `toml:"metrics_addr"`

	// Zero means the built-in default for either bound.
	MaxKeySize   int `toml:"max_key_size"`
	MaxValueSize int `toml:"max_value_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		DataFile: DefaultDataFile,
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults untouched.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

// Validate reports every invalid field at once rather than the first one.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Port < 0 || c.Port > 65535 {
		result = multierror.Append(result, errors.Errorf("port %d out of range", c.Port))
	}
	if c.DataFile == "" {
		result = multierror.Append(result, errors.New("data_file must not be empty"))
	}
	if c.MaxKeySize < 0 {
		result = multierror.Append(result, errors.New("max_key_size must not be negative"))
	}
	if c.MaxValueSize < 0 {
		result = multierror.Append(result, errors.New("max_value_size must not be negative"))
	}

	return result.ErrorOrNil()
}
