package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	BackendConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type BackendConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetDevBackendSecret() string
}

type StorageConfig interface {
	GetRedisURL() string
	GetStorageKeyTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Session
}

var _ Config = mainConfig{}

// New loads the configuration from the environment. A .env file in the working
// directory is read first when present; real environment variables win.
func New() (Config, error) {
	_ = godotenv.Load()
	return Parse(nil)
}

// Parse loads the configuration from the given environment map, or from the
// process environment when environment is nil.
func Parse(environment map[string]string) (Config, error) {
	var vars EnvVars
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&vars, opts); err != nil {
		return nil, fmt.Errorf("config.Parse: %w", err)
	}
	return mainConfig{
		EnvVars: vars,
		Cors:    Cors{origins: parseOrigins(vars.AllowedOrigins)},
	}, nil
}
