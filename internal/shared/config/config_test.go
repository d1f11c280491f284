package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
gateway:
  secret: whsec_test
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "curbside.db", cfg.Database.Path)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout())
	assert.Equal(t, time.Minute, cfg.TimerInterval())
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  admin_key: sekrit
database:
  driver: postgres
  host: db.internal
  port: 5433
  user: curbside
  password: hunter2
  database: curbside
rabbitmq:
  enabled: true
  host: mq.internal
  user: guest
  password: guest
gateway:
  base_url: https://pay.example
  secret: whsec_test
  timeout_seconds: 3
timer:
  interval_seconds: 5
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout())
	assert.Equal(t, 5*time.Second, cfg.TimerInterval())
}

func TestLoadRejectsMissingGatewaySecret(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)
	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.secret")
}

func TestLoadRejectsIncompletePostgres(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
gateway:
  secret: whsec_test
`)
	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.user")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: oracle
gateway:
  secret: whsec_test
`)
	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
