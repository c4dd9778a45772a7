package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Enabled    bool   `env:"HTTP_ENABLED" envDefault:"true"`
		Port       int    `env:"PORT" envDefault:"8080"`
		Origin     string `env:"ORIGIN" envDefault:"http://localhost:3000"`
		AdminToken string `env:"ADMIN_TOKEN"`
	}

	Postgres struct {
		URL             string        `env:"DATABASE_URL,required,notEmpty"`
		MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
		MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"1"`
		ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
		AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	}

	Redis struct {
		Enabled    bool          `env:"REDIS_ENABLED" envDefault:"true"`
		Host       string        `env:"REDIS_HOST" envDefault:"localhost"`
		Port       int           `env:"REDIS_PORT" envDefault:"6379"`
		Password   string        `env:"REDIS_PASSWORD" envDefault:""`
		DB         int           `env:"REDIS_DB" envDefault:"0"`
		ResultsTTL time.Duration `env:"REDIS_RESULTS_TTL" envDefault:"24h"`
	}

	Discord struct {
		Token string `env:"DISCORD_TOKEN,required,notEmpty"`
		// Если пусто, команды регистрируются для каждой гильдии из READY/GUILD_CREATE
		GuildIDs []string `env:"DISCORD_GUILD_IDS" envSeparator:","`
	}

	Log struct {
		File       string `env:"LOG_FILE"`
		MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
		MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
		MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`
	}

	Settlement struct {
		MaxRetries      int           `env:"SETTLEMENT_MAX_RETRIES" envDefault:"3"`
		RetryDelay      time.Duration `env:"SETTLEMENT_RETRY_DELAY" envDefault:"500ms"`
		LockTTL         time.Duration `env:"SETTLEMENT_LOCK_TTL" envDefault:"30s"`
		AnnounceTimeout time.Duration `env:"SETTLEMENT_ANNOUNCE_TIMEOUT" envDefault:"10s"`
	}

	Announcements struct {
		Stream      string        `env:"ANNOUNCE_STREAM" envDefault:"giveaway:announcements"`
		Group       string        `env:"ANNOUNCE_GROUP" envDefault:"giveaway_announcers"`
		Consumer    string        `env:"ANNOUNCE_CONSUMER" envDefault:"announcer_1"`
		MaxAttempts int           `env:"ANNOUNCE_MAX_ATTEMPTS" envDefault:"5"`
		Backoff     time.Duration `env:"ANNOUNCE_BACKOFF" envDefault:"15s"`
	}
}

// RedisAddr возвращает адрес Redis в формате host:port
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env может отсутствовать, в production переменные задаются напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Settlement.MaxRetries < 1 {
		cfg.Settlement.MaxRetries = 1
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
