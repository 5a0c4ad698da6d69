package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvaudit/internal/errors"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "csvaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data/raw", cfg.Data.Dir)
	assert.Equal(t, 5000, cfg.Data.PeekRows)
	assert.Equal(t, "Label", cfg.Data.LabelColumn)
	assert.Equal(t, 15, cfg.Data.MissingTopK)
	assert.Equal(t, 25, cfg.Data.MaxCols)
	assert.Equal(t, 4, cfg.Data.Workers)
	assert.False(t, cfg.Data.CleanColumns)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.RateLimit.Enabled)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.Equal(t, AppName, cfg.Telemetry.ServiceName)
	assert.True(t, cfg.Export.IncludeBOM)
	assert.NoError(t, cfg.validate())
}

func TestLoadFrom_NoFile(t *testing.T) {
	cfg, err := LoadFrom("")

	require.NoError(t, err)
	assert.Equal(t, Default().Data, cfg.Data)
}

func TestLoadFrom_YAMLOverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
data:
  dir: /srv/cicids2017/raw
  peek_rows: 200
  label_column: " Label"
server:
  port: 9090
  read_timeout: 5s
logging:
  level: DEBUG
`)

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, "/srv/cicids2017/raw", cfg.Data.Dir)
	assert.Equal(t, 200, cfg.Data.PeekRows)
	assert.Equal(t, " Label", cfg.Data.LabelColumn)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, 15, cfg.Data.MissingTopK)
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, `
data:
  dir: /from/yaml
  peek_rows: 200
  workers: 2
`)
	t.Setenv("CSVAUDIT_DATA_DIR", "/from/env")
	t.Setenv("CSVAUDIT_DATA_WORKERS", "8")
	t.Setenv("CSVAUDIT_DATA_CLEAN_COLUMNS", "true")

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Data.Dir)
	assert.Equal(t, 8, cfg.Data.Workers)
	assert.True(t, cfg.Data.CleanColumns)
	assert.Equal(t, 200, cfg.Data.PeekRows, "yaml value survives when env is unset")
	assert.Equal(t, 25, cfg.Data.MaxCols, "default survives when neither sets it")
}

func TestLoadFrom_NormalizesNonPositiveKnobs(t *testing.T) {
	path := writeYAML(t, `
data:
  peek_rows: 0
  missing_top_k: -3
  max_cols: 0
  workers: -1
  label_column: ""
`)

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, DefaultPeekRows, cfg.Data.PeekRows)
	assert.Equal(t, DefaultMissingTopK, cfg.Data.MissingTopK)
	assert.Equal(t, DefaultMaxCols, cfg.Data.MaxCols)
	assert.Equal(t, DefaultWorkers, cfg.Data.Workers)
	assert.Equal(t, DefaultLabelColumn, cfg.Data.LabelColumn)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{
			name:    "malformed yaml",
			content: "data: [unterminated",
		},
		{
			name:    "invalid port",
			content: "server:\n  port: 70000\n",
		},
		{
			name:    "invalid log level",
			content: "logging:\n  level: verbose\n",
		},
		{
			name:    "invalid env value",
			content: "",
			env:     map[string]string{"CSVAUDIT_DATA_PEEK_ROWS": "many"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeYAML(t, tt.content)

			_, err := LoadFrom(path)

			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestLoad_ExplicitConfigEnv(t *testing.T) {
	path := writeYAML(t, "data:\n  dir: /explicit\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/explicit", cfg.Data.Dir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.Data.Dir = "" }, wantErr: true},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: true},
		{name: "zero write timeout", mutate: func(c *Config) { c.Server.WriteTimeout = 0 }, wantErr: true},
		{name: "rate limit without rps", mutate: func(c *Config) { c.Server.RateLimit.RPS = 0 }, wantErr: true},
		{name: "disabled rate limit ignores rps", mutate: func(c *Config) {
			c.Server.RateLimit.Enabled = false
			c.Server.RateLimit.RPS = 0
		}},
		{name: "bad output", mutate: func(c *Config) { c.Logging.Output = "syslog" }, wantErr: true},
		{name: "file output without path", mutate: func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_DataDirAndAddr(t *testing.T) {
	cfg := Default()
	cfg.Data.Dir = "relative/raw"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000

	assert.True(t, filepath.IsAbs(cfg.DataDir()))
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
}
