package utils

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileConfig carries the tunables that can live in a TOML file instead of
// flags. Pointer fields distinguish "absent" from zero values; flags override
// anything set here.
type FileConfig struct {
	Threads       *int     `toml:"threads"`
	FuzzFactor    *float64 `toml:"fuzz_factor"`
	LowThreshold  *float64 `toml:"low_threshold"`
	HighThreshold *float64 `toml:"high_threshold"`
	Size          string   `toml:"size"`
	Extensions    []string `toml:"extensions"`
}

// LoadConfigFile reads and parses a TOML configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %v", path, err)
	}

	cfg := &FileConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %v", path, err)
	}
	return cfg, nil
}
