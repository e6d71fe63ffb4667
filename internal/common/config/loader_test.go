package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
camunda:
  broker_address: ${TEST_CREW_BROKER}
database:
  postgres:
    host: localhost
    database: crew
    user: crew
crew:
  policy:
    overload_threshold: 6
workers:
  crew-auto-assign:
    enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_CREW_BROKER", "zeebe:26500")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, 6, cfg.Crew.Policy.OverloadThreshold)
	assert.Equal(t, 0.7, cfg.Crew.Policy.UnderutilizationRatio)
	assert.Equal(t, 40.0, cfg.Crew.Policy.StandardWeekHours)
	assert.Equal(t, CandidateSourcePostgres, cfg.Crew.CandidateSource)
	assert.Equal(t, "crew_members", cfg.Crew.CandidateIndex)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 10, cfg.Database.Redis.PoolSize)
	assert.Equal(t, 3000, cfg.Database.Redis.Timeout)
	assert.Equal(t, 3, cfg.Database.Elasticsearch.MaxRetries)

	wcfg := GetWorkerConfig(cfg, "crew-auto-assign")
	assert.False(t, wcfg.Enabled)
	assert.Equal(t, 5, wcfg.MaxJobsActive)
	assert.Equal(t, 30000, wcfg.Timeout)
	assert.False(t, IsWorkerEnabled(cfg, "crew-auto-assign"))
	assert.True(t, IsWorkerEnabled(cfg, "crew-suggest"))
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("TEST_CREW_BROKER", "zeebe:26500")
	t.Setenv("CREW_POLICY_OVERLOAD_THRESHOLD", "9")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Crew.Policy.OverloadThreshold)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Camunda: CamundaConfig{BrokerAddress: "zeebe:26500"},
			Database: DatabaseConfig{
				Postgres: PostgresConfig{Host: "db", Database: "crew", User: "crew"},
			},
		}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing broker", func(c *Config) { c.Camunda.BrokerAddress = "" }, "camunda.broker_address"},
		{"missing postgres host", func(c *Config) { c.Database.Postgres.Host = "" }, "database.postgres.host"},
		{"unknown candidate source", func(c *Config) { c.Crew.CandidateSource = "ldap" }, "crew.candidate_source"},
		{"elasticsearch without url", func(c *Config) { c.Crew.CandidateSource = CandidateSourceElasticsearch }, "database.elasticsearch"},
		{"cache without redis", func(c *Config) { c.Crew.CacheTTL = 60 }, "database.redis.address"},
		{"ratio above one", func(c *Config) { c.Crew.Policy.UnderutilizationRatio = 1.5 }, "underutilization_ratio"},
		{"sns without topic", func(c *Config) { c.Notifications.SNS.Enabled = true }, "topic_arn"},
		{"ses without sender", func(c *Config) { c.Notifications.SES.Enabled = true }, "from_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, 5*time.Minute, CrewConfig{CacheTTL: 300}.CacheTTLDuration())
}
