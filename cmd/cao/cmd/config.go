package cmd

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config holds the settings a .cao.yaml file can override.
type Config struct {
	OrdinalMode  string `yaml:"ordinal_mode"`
	MaxRecursion int    `yaml:"max_recursion"`
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a .cao.yaml config file")
}

// loadConfig reads configPath if set and returns its values (an empty
// Config when unset); applyConfigDefaults then applies them to any flag not
// passed explicitly. Flags explicitly passed on the command line always win.
func loadConfig() (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyConfigDefaults(cfg *Config, modeSet, depthSet bool) {
	if cfg.OrdinalMode != "" && !modeSet {
		verifyMode = cfg.OrdinalMode
	}
	if cfg.MaxRecursion != 0 && !depthSet {
		maxRecDepth = cfg.MaxRecursion
	}
}
