package config

import "time"

// Config is the complete powermcp configuration.
type Config struct {
	Service ServiceConfig         `yaml:"service"`
	Store   StoreConfig           `yaml:"store"`
	API     APIConfig             `yaml:"api,omitempty"`
	Engines map[string]EngineConf `yaml:"engines"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// StoreConfig defines where workspaces and the run log live.
type StoreConfig struct {
	// Dir is the workspace store root; one subdirectory per workspace key.
	Dir string `yaml:"dir"`

	// DBPath is the SQLite run-log database.
	DBPath string `yaml:"db_path"`

	// RunRetention bounds how long run-log rows are kept.
	RunRetention time.Duration `yaml:"run_retention"`

	// LockPath is the single-instance PID lock file.
	LockPath string `yaml:"lock_path"`
}

// APIConfig defines the optional HTTP status API.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// EngineConf configures one engine family.
type EngineConf struct {
	Enabled bool `yaml:"enabled"`

	// Bridge configures the cross-process runtime for engines that cannot
	// be hosted in this process. Required for every engine here: the
	// analysis backends are native Python/vendor runtimes.
	Bridge *BridgeConf `yaml:"bridge,omitempty"`
}

// BridgeConf mirrors bridge.Config in yaml form.
type BridgeConf struct {
	Interpreter string            `yaml:"interpreter,omitempty"`
	Entrypoint  string            `yaml:"entrypoint"`
	Env         map[string]string `yaml:"env,omitempty"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "powermcp",
			LogLevel: "INFO",
		},
		Store: StoreConfig{
			Dir:          "./store",
			DBPath:       "./store/powermcp.db",
			RunRetention: 30 * 24 * time.Hour,
			LockPath:     "./store/powermcp.lock",
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8787",
		},
		Engines: map[string]EngineConf{},
	}
}
