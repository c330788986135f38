package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRegistryURL, cfg.Registry.BaseURL)
	assert.Equal(t, 0, cfg.Registry.RetryMax)
	assert.Equal(t, "admin", cfg.Auth.Username)
	assert.Equal(t, "cookie", cfg.Session.Backend)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "none", cfg.Messaging.Backend)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eaisdo.yaml")
	data := []byte(`
web:
  port: 9090
  session_wait: 500ms
registry:
  base_url: http://registry.local/nodes
  retry_max: 2
session:
  backend: redis
messaging:
  backend: kafka
  kafka:
    brokers: [k1:9092, k2:9092]
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Web.SessionWait)
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, "http://registry.local/nodes", cfg.Registry.BaseURL)
	assert.Equal(t, 2, cfg.Registry.RetryMax)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Messaging.Kafka.Brokers)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	cases := map[string]string{
		"session":   "session:\n  backend: memcached\n",
		"database":  "database:\n  driver: mysql\n",
		"messaging": "messaging:\n  backend: nats\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Defaults()
	cfg.Registry.BaseURL = "http://example.test/eaisUsers"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Registry.BaseURL, loaded.Registry.BaseURL)
}
