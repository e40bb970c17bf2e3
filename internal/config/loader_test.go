package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML(t *testing.T) {
	cfg, err := LoadFromYAML("../../config.example.yaml")
	if err != nil {
		t.Fatalf("failed to load YAML config: %v", err)
	}

	validateConfig(t, cfg, "YAML")
	require.Len(t, cfg.Processors, 4)
	require.Equal(t, "debug", cfg.Logging.GetComponentLevel("listener"))
}

func TestLoadFromJSON(t *testing.T) {
	cfg, err := LoadFromJSON("../../config.example.json")
	if err != nil {
		t.Fatalf("failed to load JSON config: %v", err)
	}

	validateConfig(t, cfg, "JSON")
}

func TestLoadFromTOML(t *testing.T) {
	cfg, err := LoadFromTOML("../../config.example.toml")
	if err != nil {
		t.Fatalf("failed to load TOML config: %v", err)
	}

	validateConfig(t, cfg, "TOML")
}

func TestLoadFromFile_AutoDetect(t *testing.T) {
	for _, path := range []string{
		"../../config.example.yaml",
		"../../config.example.json",
		"../../config.example.toml",
	} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			cfg, err := LoadFromFile(path)
			require.NoError(t, err)
			validateConfig(t, cfg, "auto-detected "+filepath.Ext(path))
		})
	}
}

func TestLoadFromFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFromFile("config.txt")
	require.Contains(t, err.Error(), "unsupported config file format")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvNodeEndpoint, "wss://node.example.com")
	t.Setenv(config.EnvDBPath, "/tmp/override.db")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RWA_DEFAULT_START_HEIGHT=42\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(config.EnvDefaultStartHeight) })

	cfg, err := Load("../../config.example.yaml", envFile)
	require.NoError(t, err)
	require.Equal(t, "wss://node.example.com", cfg.Node.Endpoint)
	require.Equal(t, "/tmp/override.db", cfg.DB.Path)
	require.Equal(t, uint64(42), cfg.Listener.DefaultStartHeight)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	cfg, err := Load("../../config.example.yaml", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, uint64(17000000), cfg.Listener.DefaultStartHeight)
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv(config.EnvDefaultStartHeight, "not-a-number")

	_, err := LoadFromFile("../../config.example.yaml")
	require.ErrorContains(t, err, config.EnvDefaultStartHeight)
}

func TestSchema(t *testing.T) {
	raw, err := Schema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "schema has no properties")
	for _, section := range []string{"node", "listener", "db", "processors", "api"} {
		require.Contains(t, props, section)
	}
}

// validateConfig checks that the loaded config has expected values
func validateConfig(t *testing.T, cfg *config.Config, format string) {
	t.Helper()

	require.NotEmpty(t, cfg.Node.Endpoint, "[%s] node.endpoint should not be empty", format)
	require.Equal(t, 10*time.Second, cfg.Node.RequestTimeout.Duration, "[%s] node.request_timeout", format)

	require.Equal(t, 100, cfg.Listener.ChunkSize, "[%s] listener.chunk_size", format)
	require.Equal(t, time.Minute, cfg.Listener.StreamTimeout.Duration, "[%s] listener.stream_timeout", format)
	require.NotNil(t, cfg.Listener.Reconnect, "[%s] listener.reconnect", format)
	require.Equal(t, 10, cfg.Listener.Reconnect.MaxAttempts, "[%s] listener.reconnect.max_attempts", format)

	require.Equal(t, config.DriverSQLite, cfg.DB.Driver, "[%s] db.driver", format)
	require.NotEmpty(t, cfg.DB.Path, "[%s] db.path should not be empty", format)
	require.Equal(t, "WAL", cfg.DB.JournalMode, "[%s] db.journal_mode should have default value", format)
	require.Equal(t, "NORMAL", cfg.DB.Synchronous, "[%s] db.synchronous should have default value", format)

	require.NotEmpty(t, cfg.Processors, "[%s] there should be at least one processor configured", format)
	for i, p := range cfg.Processors {
		require.NotEmpty(t, p.Name, "[%s] processors[%d].name should not be empty", format, i)
		require.NotEmpty(t, p.ModuleRef, "[%s] processors[%d].module_ref should not be empty", format, i)
	}
}

func validConfig() *config.Config {
	return &config.Config{
		Node: config.NodeConfig{Endpoint: "ws://localhost:20000"},
		DB:   config.DatabaseConfig{Path: "./test.db"},
		Processors: []config.ProcessorConfig{{
			Name:         "fund",
			Type:         "security_mint_fund",
			ModuleRef:    "0x0a1c4b3d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f804",
			ContractName: "init_security_mint_fund",
		}},
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	require.Equal(t, 100, cfg.Listener.ChunkSize)
	require.Equal(t, time.Second, cfg.Listener.ChunkTimeout.Duration)
	require.Equal(t, time.Second, cfg.Listener.Reconnect.InitialBackoff.Duration)
	require.Equal(t, 30*time.Second, cfg.Listener.Reconnect.MaxBackoff.Duration)
	require.Equal(t, config.DriverSQLite, cfg.DB.Driver)
	require.Equal(t, "WAL", cfg.DB.JournalMode)
	require.Equal(t, "NORMAL", cfg.DB.Synchronous)
	require.Equal(t, 5000, cfg.DB.BusyTimeout)
	require.Equal(t, 25, cfg.DB.MaxOpenConnections)
	require.Equal(t, 5, cfg.DB.MaxIdleConnections)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*config.Config) {},
		},
		{
			name:    "missing endpoint",
			mutate:  func(c *config.Config) { c.Node.Endpoint = "" },
			wantErr: "node.endpoint is required",
		},
		{
			name:    "unsupported endpoint scheme",
			mutate:  func(c *config.Config) { c.Node.Endpoint = "ftp://node" },
			wantErr: "unsupported scheme",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *config.Config) { c.DB.Driver = config.DriverPostgres },
			wantErr: "db.dsn is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *config.Config) { c.DB.Driver = "mysql" },
			wantErr: "db.driver must be one of",
		},
		{
			name:    "no processors",
			mutate:  func(c *config.Config) { c.Processors = nil },
			wantErr: "at least one processor",
		},
		{
			name:    "unknown processor type",
			mutate:  func(c *config.Config) { c.Processors[0].Type = "erc20" },
			wantErr: "processors[0]",
		},
		{
			name:    "short module ref",
			mutate:  func(c *config.Config) { c.Processors[0].ModuleRef = "0x1234" },
			wantErr: "module_ref must be a 32 byte hex string",
		},
		{
			name: "duplicate identity",
			mutate: func(c *config.Config) {
				dup := c.Processors[0]
				dup.Name = "fund-2"
				c.Processors = append(c.Processors, dup)
			},
			wantErr: "already used by 'fund'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			cfg.ApplyDefaults()

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
