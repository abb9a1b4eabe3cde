package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Endpoint         string  `toml:"endpoint"`
	APIKey           string  `toml:"api_key"`
	Model            string  `toml:"model"`
	MaxContextLength int     `toml:"max_context_length"`
	Temperature      float64 `toml:"temperature"`
	MaxTokens        int     `toml:"max_tokens"`
	DataDir          string  `toml:"data_dir"`
}

func Default() Config {
	return Config{
		Endpoint:         "https://openrouter.ai/api",
		Model:            "qwen/qwen3-coder:free",
		MaxContextLength: 8000,
		Temperature:      0.7,
		MaxTokens:        4096,
		DataDir:          defaultDataDir(),
	}
}

// LoadOrCreate reads the config at path, writing the default file first if
// none exists yet.
func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			config.APIKey = os.Getenv("QCODER_API_KEY")

			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, err
	}

	config.DataDir = expandPath(config.DataDir)
	config.Endpoint = strings.TrimSpace(config.Endpoint)

	if config.Endpoint == "" {
		return config, errors.New("endpoint is required")
	}

	if config.MaxContextLength <= 0 {
		config.MaxContextLength = 8000
	}

	if config.APIKey == "" {
		config.APIKey = os.Getenv("QCODER_API_KEY")
	}

	return config, nil
}

// DefaultPath is where LoadOrCreate looks when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

func defaultDataDir() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return ".qcoder"
	}

	return filepath.Join(homeDir, ".qcoder")
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()

		if homeDir != "" {
			trimmed := strings.TrimPrefix(path, "~")
			trimmed = strings.TrimPrefix(trimmed, string(os.PathSeparator))

			return filepath.Join(homeDir, trimmed)
		}
	}

	return path
}
