// Package config loads the dashboard backend configuration.
//
// Values come from three layers, later layers winning:
//
//  1. Default() values
//  2. an optional YAML file (config.yaml, configs/config.yaml, or an explicit path)
//  3. environment variables prefixed with KROSS
//
// Nested sections map to nested variable names, for example
// KROSS_SERVER_PORT, KROSS_STORAGE_BACKEND, KROSS_CACHE_REDIS_ADDR or
// KROSS_LOGGING_LEVEL. The property list is read from the YAML file only.
//
// The package also provides the PropertyRegistry, which resolves the
// different names a property goes by (display label, storage folder,
// upper-snake label) to one domain.Property.
package config
