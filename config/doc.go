// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Secrets (the transit API key) are read from the environment; a .env file
// is loaded first when present.
package config
