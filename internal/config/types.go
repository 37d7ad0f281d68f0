package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// StorageKind selects the domain record store backend
type StorageKind string

const (
	StorageFirestore StorageKind = "firestore"
	StorageMemory    StorageKind = "memory"
)

// Config is the fully resolved backend configuration
type Config struct {
	Version   string          `json:"version"`
	Server    ServerConfig    `json:"server"`
	Firebase  FirebaseConfig  `json:"firebase"`
	Providers ProvidersConfig `json:"providers"`
}

// ProvidersConfig switches individual login providers on or off
type ProvidersConfig struct {
	Kakao ProviderConfig `json:"kakao"`
	Naver ProviderConfig `json:"naver"`
}

// ProviderConfig holds per-provider settings. A provider left out of the
// config file is enabled; disabling is always explicit.
type ProviderConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// IsEnabled reports whether the provider should be mounted
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr           string   `json:"addr"`
	BaseURL        string   `json:"baseUrl"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

// FirebaseConfig configures the GCP project, service-account credentials,
// and record storage backend
type FirebaseConfig struct {
	ProjectID         string      `json:"projectId"`
	CredentialsFile   string      `json:"credentialsFile,omitempty"`
	FirestoreDatabase string      `json:"firestoreDatabase,omitempty"`
	Storage           StorageKind `json:"storage,omitempty"`

	// Resolved from credentialsJson, which must be an env reference so
	// the service-account key never sits in the config file.
	CredentialsJSON Secret `json:"-"`
}

type rawFirebaseConfig struct {
	ProjectID          string          `json:"projectId"`
	CredentialsFile    string          `json:"credentialsFile,omitempty"`
	CredentialsJSONRaw json.RawMessage `json:"credentialsJson,omitempty"`
	FirestoreDatabase  string          `json:"firestoreDatabase,omitempty"`
	Storage            StorageKind     `json:"storage,omitempty"`
}

// UnmarshalJSON resolves environment variable references immediately, so
// the rest of the program only ever sees final values.
func (c *FirebaseConfig) UnmarshalJSON(data []byte) error {
	var raw rawFirebaseConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ProjectID = raw.ProjectID
	c.CredentialsFile = raw.CredentialsFile
	c.FirestoreDatabase = raw.FirestoreDatabase
	c.Storage = raw.Storage

	if len(raw.CredentialsJSONRaw) > 0 {
		value, err := resolveValue(raw.CredentialsJSONRaw)
		if err != nil {
			return fmt.Errorf("resolving credentialsJson: %w", err)
		}
		c.CredentialsJSON = Secret(value)
	}
	return nil
}

// resolveValue accepts either a plain JSON string or an {"$env": "VAR"}
// reference and returns the final value.
func resolveValue(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}

	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", fmt.Errorf("config value must be string or reference object")
	}

	envVar, ok := ref["$env"]
	if !ok {
		return "", fmt.Errorf("unknown reference type in config value")
	}
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set", envVar)
	}
	return value, nil
}
