package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadResolvesEnvReference(t *testing.T) {
	t.Setenv("TEST_SA_KEY", `{"client_email":"svc@howsu-test.iam.gserviceaccount.com"}`)

	path := writeConfig(t, `{
		"version": "v1",
		"server": {"addr": ":9090", "allowedOrigins": ["https://howsu.app"]},
		"firebase": {
			"projectId": "howsu-test",
			"credentialsJson": {"$env": "TEST_SA_KEY"},
			"firestoreDatabase": "(default)"
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://howsu.app"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "howsu-test", cfg.Firebase.ProjectID)
	assert.Equal(t, StorageFirestore, cfg.Firebase.Storage, "firestore is the default backend")
	assert.Contains(t, string(cfg.Firebase.CredentialsJSON), "client_email")
}

func TestLoadDefaultsAddr(t *testing.T) {
	path := writeConfig(t, `{
		"version": "v1",
		"firebase": {"projectId": "howsu-test", "credentialsFile": "/etc/howsu/key.json"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadRejectsUnsetEnvVar(t *testing.T) {
	path := writeConfig(t, `{
		"version": "v1",
		"firebase": {
			"projectId": "howsu-test",
			"credentialsJson": {"$env": "DEFINITELY_NOT_SET_12345"}
		}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFINITELY_NOT_SET_12345")
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing version",
			content: `{"firebase": {"projectId": "p", "credentialsFile": "k.json"}}`,
			wantErr: "version is required",
		},
		{
			name:    "unsupported version",
			content: `{"version": "v2", "firebase": {"projectId": "p", "credentialsFile": "k.json"}}`,
			wantErr: "unsupported config version",
		},
		{
			name:    "missing project",
			content: `{"version": "v1", "firebase": {"credentialsFile": "k.json"}}`,
			wantErr: "projectId is required",
		},
		{
			name:    "missing credentials",
			content: `{"version": "v1", "firebase": {"projectId": "p"}}`,
			wantErr: "credentialsFile or firebase.credentialsJson",
		},
		{
			name:    "bad storage kind",
			content: `{"version": "v1", "firebase": {"projectId": "p", "credentialsFile": "k.json", "storage": "redis"}}`,
			wantErr: "unsupported storage kind",
		},
		{
			name:    "not json",
			content: `version: v1`,
			wantErr: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadProviderToggles(t *testing.T) {
	path := writeConfig(t, `{
		"version": "v1",
		"firebase": {"projectId": "howsu-test", "credentialsFile": "/etc/howsu/key.json"},
		"providers": {"naver": {"enabled": false}}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Providers.Kakao.IsEnabled(), "providers absent from config stay enabled")
	assert.False(t, cfg.Providers.Naver.IsEnabled())
}

func TestLoadProvidersDefaultEnabled(t *testing.T) {
	path := writeConfig(t, `{
		"version": "v1",
		"firebase": {"projectId": "howsu-test", "credentialsFile": "/etc/howsu/key.json"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Providers.Kakao.IsEnabled())
	assert.True(t, cfg.Providers.Naver.IsEnabled())
}

func TestLoadBaseURLBecomesDefaultOrigin(t *testing.T) {
	path := writeConfig(t, `{
		"version": "v1",
		"server": {"baseUrl": "https://api.howsu.app/v1"},
		"firebase": {"projectId": "howsu-test", "credentialsFile": "/etc/howsu/key.json"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://api.howsu.app"}, cfg.Server.AllowedOrigins)
}

func TestLoadExplicitOriginsWinOverBaseURL(t *testing.T) {
	path := writeConfig(t, `{
		"version": "v1",
		"server": {"baseUrl": "https://api.howsu.app", "allowedOrigins": ["https://howsu.app"]},
		"firebase": {"projectId": "howsu-test", "credentialsFile": "/etc/howsu/key.json"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://howsu.app"}, cfg.Server.AllowedOrigins)
}

func TestLoadRejectsRelativeBaseURL(t *testing.T) {
	path := writeConfig(t, `{
		"version": "v1",
		"server": {"baseUrl": "api.howsu.app"},
		"firebase": {"projectId": "howsu-test", "credentialsFile": "/etc/howsu/key.json"}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseUrl must be an absolute URL")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestSecretRedaction(t *testing.T) {
	secret := Secret("super-secret-key")
	assert.Equal(t, "***", secret.String())
	assert.Equal(t, "***", fmt.Sprintf("%v", secret))
	assert.Equal(t, "***", fmt.Sprintf("%s", secret))

	data, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{Key: secret})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"***"}`, string(data))

	assert.Equal(t, "", Secret("").String())
}

func TestServiceAccountJSONPrefersInline(t *testing.T) {
	cfg := &Config{}
	cfg.Firebase.CredentialsJSON = `{"client_email":"inline@test"}`
	cfg.Firebase.CredentialsFile = "/does/not/exist.json"

	data, err := cfg.ServiceAccountJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "inline@test")
}

func TestServiceAccountJSONReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_email":"file@test"}`), 0o600))

	cfg := &Config{}
	cfg.Firebase.CredentialsFile = path

	data, err := cfg.ServiceAccountJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "file@test")
}
