package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/streax-app/streax/internal/domain"
	"github.com/streax-app/streax/internal/infra/sqlite"
)

// Config is the daemon configuration, loaded from
// ~/.streax/config.toml with STREAX_* environment overrides.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Engine  EngineConfig  `toml:"engine"`
	Metrics MetricsConfig `toml:"metrics"`
}

type APIConfig struct {
	Host string `toml:"host" env:"STREAX_API_HOST"`
	Port int    `toml:"port" env:"STREAX_API_PORT"`
}

type StorageConfig struct {
	Path string `toml:"path" env:"STREAX_DB_PATH"`
}

// EngineConfig controls the optional XP bonus multipliers. All bonuses
// are off by default so the base award arithmetic stays untouched.
type EngineConfig struct {
	BonusEnabled bool    `toml:"bonus_enabled" env:"STREAX_BONUS_ENABLED"`
	DailyTarget  int     `toml:"daily_target" env:"STREAX_DAILY_TARGET"`
	FullDayBonus float64 `toml:"full_day_bonus"`
	StreakRate   float64 `toml:"streak_rate"`
	StreakCap    float64 `toml:"streak_cap"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled" env:"STREAX_METRICS_ENABLED"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	bonus := domain.DefaultBonus()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8335,
		},
		Storage: StorageConfig{
			Path: sqlite.DefaultPath(),
		},
		Engine: EngineConfig{
			BonusEnabled: bonus.Enabled,
			DailyTarget:  bonus.DailyTarget,
			FullDayBonus: bonus.FullDayBonus,
			StreakRate:   bonus.StreakRate,
			StreakCap:    bonus.StreakCap,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfigPath returns ~/.streax/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".streax", "config.toml")
}

// LoadConfig reads the TOML file at path if it exists, then applies
// environment variable overrides. A missing file is not an error; the
// defaults are used.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
		return cfg, fmt.Errorf("invalid api port %d", cfg.API.Port)
	}
	return cfg, nil
}

// Bonus converts the engine section into the domain bonus policy.
func (c Config) Bonus() domain.Bonus {
	return domain.Bonus{
		Enabled:      c.Engine.BonusEnabled,
		DailyTarget:  c.Engine.DailyTarget,
		FullDayBonus: c.Engine.FullDayBonus,
		StreakRate:   c.Engine.StreakRate,
		StreakCap:    c.Engine.StreakCap,
	}
}

// Addr returns the host:port the API server binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
