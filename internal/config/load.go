package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
)

// Load reads, resolves, and validates the config file
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	config.applyDefaults()
	if err := Validate(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	// With no explicit allowlist, CORS admits the service's own origin
	// rather than falling open.
	if len(config.Server.AllowedOrigins) == 0 && config.Server.BaseURL != "" {
		base, _ := url.Parse(config.Server.BaseURL)
		config.Server.AllowedOrigins = []string{base.Scheme + "://" + base.Host}
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Firebase.Storage == "" {
		c.Firebase.Storage = StorageFirestore
	}
}

// Validate checks the resolved config for structural problems
func Validate(c *Config) error {
	if c.Version == "" {
		return fmt.Errorf("config version is required")
	}
	if c.Version != "v1" {
		return fmt.Errorf("unsupported config version: %s", c.Version)
	}

	if c.Server.BaseURL != "" {
		base, err := url.Parse(c.Server.BaseURL)
		if err != nil || !base.IsAbs() || base.Host == "" {
			return fmt.Errorf("server.baseUrl must be an absolute URL: %s", c.Server.BaseURL)
		}
	}

	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("firebase.projectId is required")
	}
	if c.Firebase.CredentialsFile == "" && c.Firebase.CredentialsJSON == "" {
		return fmt.Errorf("one of firebase.credentialsFile or firebase.credentialsJson is required")
	}

	switch c.Firebase.Storage {
	case StorageFirestore, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage kind: %s", c.Firebase.Storage)
	}
	return nil
}

// ServiceAccountJSON returns the service-account key material, reading
// credentialsFile when no inline credentials were provided.
func (c *Config) ServiceAccountJSON() ([]byte, error) {
	if c.Firebase.CredentialsJSON != "" {
		return []byte(c.Firebase.CredentialsJSON), nil
	}
	data, err := os.ReadFile(c.Firebase.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	return data, nil
}
