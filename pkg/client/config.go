package client

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/dmm341/avocado-ledger/pkg/config"
)

// Config drives the API client. Every field can be overridden by CLI flags.
type Config struct {
	BaseURL        string        `envconfig:"AVOLEDGER_CLIENT_BASE_URL" default:"http://localhost:8080"`
	Timeout        time.Duration `envconfig:"AVOLEDGER_CLIENT_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"AVOLEDGER_CLIENT_MAX_RETRIES" default:"2"`
	RetryBaseDelay time.Duration `envconfig:"AVOLEDGER_CLIENT_RETRY_BASE_DELAY" default:"200ms"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing client config: %w", err)
	}
	return cfg, nil
}
