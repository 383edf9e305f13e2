// Package config loads and validates powermcp configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file. Missing fields fall back
// to Defaults; `${VAR}` references are expanded from the environment before
// parsing.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := Defaults()
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", absPath, err)
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR} references. Unset variables expand to the
// empty string so validation catches them downstream.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Service.Name == "" {
		cfg.Service.Name = def.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = def.Service.LogLevel
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = def.Store.Dir
	}
	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = filepath.Join(cfg.Store.Dir, "powermcp.db")
	}
	if cfg.Store.LockPath == "" {
		cfg.Store.LockPath = filepath.Join(cfg.Store.Dir, "powermcp.lock")
	}
	if cfg.Store.RunRetention <= 0 {
		cfg.Store.RunRetention = def.Store.RunRetention
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = def.API.Listen
	}
	if cfg.Engines == nil {
		cfg.Engines = map[string]EngineConf{}
	}
}

func validate(cfg *Config) error {
	switch strings.ToUpper(cfg.Service.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("service.log_level %q is not one of DEBUG, INFO, WARN, ERROR", cfg.Service.LogLevel)
	}

	for name, eng := range cfg.Engines {
		if !eng.Enabled {
			continue
		}
		if eng.Bridge == nil {
			return fmt.Errorf("engine %q is enabled but has no bridge section", name)
		}
		if eng.Bridge.Entrypoint == "" {
			return fmt.Errorf("engine %q: bridge.entrypoint is required", name)
		}
		if eng.Bridge.Timeout < 0 {
			return fmt.Errorf("engine %q: bridge.timeout must not be negative", name)
		}
	}
	return nil
}
