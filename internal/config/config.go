package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ServiceName string        `env:"SERVICE_NAME, default=mercadotech-storefront"`
	ListenAddr  string        `env:"LISTEN_ADDR,  default=127.0.0.1:5173"`
	APIURL      string        `env:"API_URL,      default=http://localhost:5000"`
	StorageURL  string        `env:"STORAGE_URL,  default=sqlite://mercadotech.db"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT, default=0s"`

	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	KafkaBrokers string `env:"KAFKA_BROKERS"`
}

// Load reads .env when present and then the process environment. The
// returned notice is non-empty when no .env file was found.
func Load(ctx context.Context) (*Config, string, error) {
	var notice string
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		notice = ".env file not found, using system environment variables"
	}

	return load(ctx, envconfig.OsLookuper(), notice)
}

func load(ctx context.Context, lookuper envconfig.Lookuper, notice string) (*Config, string, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, "", fmt.Errorf("config: %w", err)
	}
	return &cfg, notice, nil
}

func (c *Config) Brokers() []string {
	return CSV(c.KafkaBrokers)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
