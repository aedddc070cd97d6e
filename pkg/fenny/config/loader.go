// loader.go handles loading configuration from YAML files with credential
// resolution via environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches environment variable references in config values:
//   - ${VAR_NAME}          - simple variable
//   - ${VAR_NAME:-default} - default value if not set
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// LoadFromFile reads and parses a YAML configuration file.
// Loads .env files first and expands ${VAR} references before parsing.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse([]byte(expandEnvVars(string(data))))
}

// Parse parses YAML bytes into a Config.
// Starts with defaults and overlays values from the YAML.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// FindConfigFile searches for config files in standard locations.
// Returns empty string when none exists.
func FindConfigFile() string {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"fenny.yaml",
		"fenny.yml",
		"configs/config.yaml",
		"configs/fenny.yaml",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadEnvFiles loads .env files from standard locations.
// godotenv.Load does not overwrite variables already set in the environment.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} references with their
// environment values. Unset variables without a default expand to the
// empty string.
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name, def := sub[1], sub[2]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return def
	})
}
