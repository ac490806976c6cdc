package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine     EngineConfig     `toml:"engine"`
	Database   DatabaseConfig   `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Data       DataConfig       `toml:"data"`
	Simulation SimulationConfig `toml:"simulation"`
}

type EngineConfig struct {
	EntityCapacity int `toml:"entity_capacity"` // initial live-set and storage sizing
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DataConfig struct {
	PrefabFile string `toml:"prefab_file"`
}

type SimulationConfig struct {
	TickRate      time.Duration `toml:"tick_rate"`
	Ticks         int           `toml:"ticks"` // 0 runs until SIGINT
	SnapshotEvery int           `toml:"snapshot_every"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration, for callers running
// without a config file.
func Defaults() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			EntityCapacity: 1024,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripting: ScriptingConfig{
			Enabled: false,
			Dir:     "scripts",
		},
		Data: DataConfig{
			PrefabFile: "data/prefabs.yaml",
		},
		Simulation: SimulationConfig{
			TickRate:      100 * time.Millisecond,
			Ticks:         0,
			SnapshotEvery: 50,
		},
	}
}
