package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	// Base URL of the identity/profile collaborator used to resolve staker
	// display names. Empty disables remote resolution; stake reads then fall
	// back to placeholder names.
	IdentityBaseURL   string `env:"IDENTITY_BASE_URL"`
	IdentityTimeoutMS int    `env:"IDENTITY_TIMEOUT_MS" envDefault:"3000"`

	CatalogPath     string `env:"CATALOG_PATH"`
	CatalogEnforced bool   `env:"CATALOG_ENFORCED" envDefault:"false"`

	// Active sessions with no writes for this many minutes are paused by the
	// janitor. Zero disables the sweep.
	AutoPauseAfterMins  int `env:"AUTO_PAUSE_AFTER_MINUTES" envDefault:"0"`
	JanitorIntervalSecs int `env:"JANITOR_INTERVAL_SECONDS" envDefault:"60"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
