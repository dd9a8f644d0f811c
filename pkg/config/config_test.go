package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ecogw.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", c.Modbus.Host)
	assert.Equal(t, 502, c.Modbus.Port)
	assert.Equal(t, time.Second, c.Scheduler.Tick)
	assert.Equal(t, 30*time.Second, c.Scheduler.FetchTimeout)
	assert.Equal(t, 6, c.Ecogaz.Days)
	assert.Equal(t, uint16(100), c.Ecowatt.Start)
	assert.Equal(t, 4, c.Ecowatt.Days)
	assert.Equal(t, 15*time.Minute, c.Ecowatt.MinRequestInterval)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, 64, c.Cache.Memory.MaxEntries)
	assert.Equal(t, 5*time.Minute, c.Cache.Memory.CleanupInterval)
	assert.Equal(t, 4, c.Cache.Redis.PoolSize)
	assert.Equal(t, "ecogw", c.Cache.Redis.Prefix)
	assert.Equal(t, 5*time.Second, c.Debug.Interval)
	assert.Equal(t, "Europe/Paris", c.Location)
}

func TestLoadFileThenEnvThenOverrides(t *testing.T) {
	p := writeFile(t, `
modbus:
  port: 1502
ecogaz:
  interval: 30m
ecowatt:
  sandbox: true
  client_id: from-file
log:
  format: json
`)
	t.Setenv("ECOGW_ECOWATT_CLIENT_ID", "from-env")
	t.Setenv("ECOGW_ECOWATT_CLIENT_SECRET", "s3cret")
	t.Setenv("ECOGW_KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := Load(p, func(c *Config) { c.Modbus.Host = "0.0.0.0" })
	require.NoError(t, err)

	assert.Equal(t, 1502, c.Modbus.Port)
	assert.Equal(t, "0.0.0.0", c.Modbus.Host)
	assert.Equal(t, 30*time.Minute, c.Ecogaz.Interval)
	assert.True(t, c.Ecowatt.Sandbox)
	assert.Equal(t, "from-env", c.Ecowatt.ClientID)
	assert.Equal(t, "s3cret", c.Ecowatt.ClientSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "json", c.Log.Format)
	// untouched by the file
	assert.Equal(t, time.Hour, c.Ecowatt.Interval)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"port":     "modbus:\n  port: 70000\n",
		"format":   "log:\n  format: xml\n",
		"interval": "ecogaz:\n  interval: 0s\n",
		"backend":  "cache:\n  backend: memcached\n",
		"kafka":    "kafka:\n  enabled: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
