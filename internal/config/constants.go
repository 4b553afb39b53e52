package config

import "time"

const (
	AppName    = "Kross Dashboard"
	AppVersion = "2026.1.0"

	// EnvPrefix namespaces every environment variable
	EnvPrefix = "KROSS"

	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"

	DefaultPort         = 8080
	DefaultCacheTTL     = 60 * time.Second
	DefaultCacheEntries = 256
	DefaultDataRoot     = "data"
	DefaultLogFile      = "logs/kross.log"

	// DefaultRoomsHint applies to properties configured without a room count
	DefaultRoomsHint = 5
)

// configFileLocations are searched in order when no explicit path is given
var configFileLocations = []string{
	"config.yaml",
	"configs/config.yaml",
	"../configs/config.yaml",
}
