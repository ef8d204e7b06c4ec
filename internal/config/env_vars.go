package config

import (
	"strings"
	"time"
)

// EnvVars holds the values read from the environment.
type EnvVars struct {
	Port           string        `env:"PORT"              envDefault:"8080"`
	AppName        string        `env:"APP_NAME"          envDefault:"Donor Portal"`
	Env            string        `env:"ENV"               envDefault:"DEV"`
	LogLevel       string        `env:"LOG_LEVEL"         envDefault:"info"`
	DataFolder     string        `env:"FOLDER"`
	APIBaseURL     string        `env:"API_BASE_URL"      envDefault:"http://localhost:5000"`
	APITimeout     time.Duration `env:"API_TIMEOUT"       envDefault:"10s"`
	DevSecret      string        `env:"DEVBACKEND_SECRET" envDefault:"dev-secret"`
	RedisURL       string        `env:"REDIS_URL"`
	StorageKeyTTL  time.Duration `env:"SESSION_KEY_TTL"   envDefault:"720h"`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetDataFolder returns the directory for the browser session file. Empty
// means no file storage.
func (e EnvVars) GetDataFolder() string {
	return e.DataFolder
}

// GetAPIBaseURL returns the base URL of the remote REST backend without a trailing slash
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.APIBaseURL, "/")
}

func (e EnvVars) GetAPITimeout() time.Duration {
	if e.APITimeout <= 0 {
		return 10 * time.Second
	}
	return e.APITimeout
}

func (e EnvVars) GetDevBackendSecret() string {
	return e.DevSecret
}

// GetRedisURL returns the redis URL used for browser storage. Empty means in-memory storage.
func (e EnvVars) GetRedisURL() string {
	return e.RedisURL
}

// GetStorageKeyTTL bounds how long redis keeps an idle browser namespace.
func (e EnvVars) GetStorageKeyTTL() time.Duration {
	return e.StorageKeyTTL
}
