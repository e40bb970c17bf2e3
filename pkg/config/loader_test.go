package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mapLookup(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Config{
		Node:     NodeConfig{Endpoint: "ws://file:20000"},
		DB:       DatabaseConfig{Path: "file.db"},
		Listener: ListenerConfig{DefaultStartHeight: 1},
	}

	require.NoError(t, cfg.ApplyEnvOverrides(mapLookup(map[string]string{
		EnvNodeEndpoint:       "wss://grpc.testnet.example:443",
		EnvDBDriver:           DriverPostgres,
		EnvDBDSN:              "postgres://rwa@localhost/rwa",
		EnvDefaultStartHeight: "0x1000",
	})))

	require.Equal(t, "wss://grpc.testnet.example:443", cfg.Node.Endpoint)
	require.Equal(t, DriverPostgres, cfg.DB.Driver)
	require.Equal(t, "postgres://rwa@localhost/rwa", cfg.DB.DSN)
	require.Equal(t, "file.db", cfg.DB.Path)
	require.Equal(t, uint64(4096), cfg.Listener.DefaultStartHeight)

	require.NoError(t, cfg.ApplyEnvOverrides(mapLookup(map[string]string{EnvDefaultStartHeight: "17000000"})))
	require.Equal(t, uint64(17000000), cfg.Listener.DefaultStartHeight)
}

func TestApplyEnvOverrides_Invalid(t *testing.T) {
	var cfg Config
	err := cfg.ApplyEnvOverrides(mapLookup(map[string]string{EnvDefaultStartHeight: "-5"}))
	require.ErrorContains(t, err, EnvDefaultStartHeight)
}
