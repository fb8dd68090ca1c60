// Package config loads the server configuration from a YAML file.
//
// A loaded Config is treated as immutable: the server keeps one pointer to
// it for the life of the process and every connection reads through that
// pointer without locking.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the whole server configuration.
type Config struct {
	Port uint16 `yaml:"port"`
	// Root is used by hosts that leave their own root empty.
	Root  string `yaml:"root"`
	Hosts []Host `yaml:"hosts"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// SniffUnknownTypes enables content detection for files whose
	// extension maps to no MIME type.
	SniffUnknownTypes bool `yaml:"sniff_unknown_types"`

	TLS TLS `yaml:"tls"`
}

// Host is one virtual site.
type Host struct {
	Name      string     `yaml:"host_name"`
	Root      string     `yaml:"root"`
	AddHeader HeaderList `yaml:"add_header"`
}

// TLS names the PEM files used to terminate TLS on the listener.
type TLS struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

func (t TLS) Enabled() bool {
	return t.Cert != "" && t.Key != ""
}

// Load reads, decodes and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	for i := range cfg.Hosts {
		if cfg.Hosts[i].Root == "" {
			cfg.Hosts[i].Root = cfg.Root
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == 0 {
		return ErrInvalidPort
	}
	if len(c.Hosts) == 0 {
		return ErrNoHosts
	}
	for i, h := range c.Hosts {
		if h.Name == "" {
			return fmt.Errorf("hosts[%d]: %w", i, ErrMissingHostName)
		}
		if h.Root == "" {
			return fmt.Errorf("hosts[%d] %q: %w", i, h.Name, ErrMissingRoot)
		}
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return ErrNegativeTimeout
	}
	if (c.TLS.Cert == "") != (c.TLS.Key == "") {
		return ErrIncompleteTLS
	}
	return nil
}

// Addr is the listen address: every interface on the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

var (
	ErrInvalidPort     = errors.New("port must be between 1 and 65535")
	ErrNoHosts         = errors.New("at least one host is required")
	ErrMissingHostName = errors.New("host_name is required")
	ErrMissingRoot     = errors.New("root is required")
	ErrNegativeTimeout = errors.New("timeouts must not be negative")
	ErrIncompleteTLS   = errors.New("tls needs both cert and key")
)
