package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Supported storage backends.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// Config is the daemon configuration, loaded from a TOML file.
type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	Backend       string `toml:"Backend"`
	GenesisFile   string `toml:"GenesisFile"`
	Environment   string `toml:"Environment"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = ":8645"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./mctoken-data"
	}
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = BackendLevelDB
	}
	if strings.TrimSpace(c.GenesisFile) == "" {
		c.GenesisFile = "./genesis.toml"
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case BackendMemory, BackendLevelDB, BackendBolt:
		return nil
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
}
