package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play PlayConfig `toml:"play"`
}

// PlayConfig maps drill-related settings. Range values use "min:max".
type PlayConfig struct {
	Addition        *bool   `toml:"add"`
	Subtraction     *bool   `toml:"sub"`
	Multiplication  *bool   `toml:"mul"`
	Division        *bool   `toml:"div"`
	AdditionA       *string `toml:"add-a"`
	AdditionB       *string `toml:"add-b"`
	SubtractionA    *string `toml:"sub-a"`
	SubtractionB    *string `toml:"sub-b"`
	MultiplicationA *string `toml:"mul-a"`
	MultiplicationB *string `toml:"mul-b"`
	DivisionA       *string `toml:"div-a"`
	DivisionB       *string `toml:"div-b"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
