package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIURL  = "http://localhost:3000"
	configDirName  = "northstar"
	configFileName = "config.yaml"
	stateFileName  = "onboarding.json"
)

// Config is the CLI's YAML file. Flags override it.
type Config struct {
	APIURL    string `yaml:"api_url"`
	Token     string `yaml:"token,omitempty"`
	StatePath string `yaml:"state_path"`
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, configDirName), nil
}

// DefaultConfigPath is ~/.config/northstar/config.yaml on Linux.
func DefaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads path. A missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = defaultAPIURL
	}
	if strings.TrimSpace(cfg.StatePath) == "" {
		cfg.StatePath = filepath.Join(filepath.Dir(path), stateFileName)
	}
	return cfg, nil
}

func SaveConfig(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, raw, 0o600)
}
