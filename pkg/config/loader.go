package config

import (
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/common"
)

// Environment variables that override file settings.
const (
	EnvNodeEndpoint       = "RWA_NODE_ENDPOINT"
	EnvDBDriver           = "RWA_DB_DRIVER"
	EnvDBDSN              = "RWA_DB_DSN"
	EnvDBPath             = "RWA_DB_PATH"
	EnvDefaultStartHeight = "RWA_DEFAULT_START_HEIGHT"
)

// LookupFunc reads a variable, reporting whether it is set. os.LookupEnv fits.
type LookupFunc func(key string) (string, bool)

// ApplyEnvOverrides replaces file values with the RWA_* variables that are set.
// It runs before ApplyDefaults so an override can still fall back to a default.
func (c *Config) ApplyEnvOverrides(lookup LookupFunc) error {
	if v, ok := lookup(EnvNodeEndpoint); ok {
		c.Node.Endpoint = v
	}
	if v, ok := lookup(EnvDBDriver); ok {
		c.DB.Driver = v
	}
	if v, ok := lookup(EnvDBDSN); ok {
		c.DB.DSN = v
	}
	if v, ok := lookup(EnvDBPath); ok {
		c.DB.Path = v
	}
	// Decimal or 0x prefixed hex.
	if v, ok := lookup(EnvDefaultStartHeight); ok {
		height, err := common.ParseUint64orHex(&v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDefaultStartHeight, err)
		}
		c.Listener.DefaultStartHeight = height
	}

	return nil
}
