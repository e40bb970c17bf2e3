package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

const (
	// DriverSQLite selects the embedded SQLite store.
	DriverSQLite = "sqlite3"
	// DriverPostgres selects a PostgreSQL server reached through pgx.
	DriverPostgres = "postgres"
)

// Config represents the complete configuration for the RWA indexer.
type Config struct {
	// Node contains the Concordium node gateway configuration
	Node NodeConfig `yaml:"node" json:"node" toml:"node"`

	// Listener contains the block listener configuration
	Listener ListenerConfig `yaml:"listener" json:"listener" toml:"listener"`

	// DB contains the relational store configuration
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Maintenance contains optional SQLite maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`

	// Processors lists the contract families the indexer tracks
	Processors []ProcessorConfig `yaml:"processors" json:"processors" toml:"processors"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`

	// API contains the status API configuration
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`
}

// NodeConfig represents the connection to the node JSON-RPC gateway.
type NodeConfig struct {
	// Endpoint is the gateway URL. Subscriptions need a ws:// or wss:// endpoint.
	Endpoint string `yaml:"endpoint" json:"endpoint" toml:"endpoint"`

	// RequestTimeout bounds every individual query to the node
	RequestTimeout common.Duration `yaml:"request_timeout" json:"request_timeout" toml:"request_timeout"`
}

// ApplyDefaults sets default values for optional node configuration fields.
func (n *NodeConfig) ApplyDefaults() {
	if n.RequestTimeout.Duration == 0 {
		n.RequestTimeout = common.NewDuration(10 * time.Second) //nolint:mnd
	}
}

// Validate checks if the node configuration is valid.
func (n *NodeConfig) Validate() error {
	if n.Endpoint == "" {
		return fmt.Errorf("node.endpoint is required")
	}

	u, err := url.Parse(n.Endpoint)
	if err != nil {
		return fmt.Errorf("node.endpoint: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("node.endpoint: unsupported scheme %q (supported: ws, wss, http, https)", u.Scheme)
	}

	return nil
}

// ListenerConfig represents the configuration of the finalized block listener.
type ListenerConfig struct {
	// DefaultStartHeight is the first block height processed when no checkpoint exists
	DefaultStartHeight uint64 `yaml:"default_start_height" json:"default_start_height" toml:"default_start_height"`

	// ChunkSize is the maximum number of finalized blocks pulled from the stream at once
	ChunkSize int `yaml:"chunk_size" json:"chunk_size" toml:"chunk_size"`

	// ChunkTimeout is how long a partial chunk waits for more blocks before it is processed
	ChunkTimeout common.Duration `yaml:"chunk_timeout" json:"chunk_timeout" toml:"chunk_timeout"`

	// StreamTimeout is how long the stream may stay silent before the listener resubscribes
	StreamTimeout common.Duration `yaml:"stream_timeout" json:"stream_timeout" toml:"stream_timeout"`

	// Reconnect contains the resubscription backoff configuration
	Reconnect *RetryConfig `yaml:"reconnect,omitempty" json:"reconnect,omitempty" toml:"reconnect,omitempty"`
}

// ApplyDefaults sets default values for optional listener configuration fields.
func (l *ListenerConfig) ApplyDefaults() {
	if l.ChunkSize == 0 {
		l.ChunkSize = 100
	}
	if l.ChunkTimeout.Duration == 0 {
		l.ChunkTimeout = common.NewDuration(time.Second)
	}
	if l.StreamTimeout.Duration == 0 {
		l.StreamTimeout = common.NewDuration(time.Minute)
	}
	if l.Reconnect == nil {
		l.Reconnect = &RetryConfig{}
	}
	l.Reconnect.ApplyDefaults()
}

// Validate checks if the listener configuration is valid.
func (l *ListenerConfig) Validate() error {
	if l.ChunkSize < 1 {
		return fmt.Errorf("listener.chunk_size must be positive")
	}
	if l.StreamTimeout.Duration < l.ChunkTimeout.Duration {
		return fmt.Errorf("listener.stream_timeout must not be shorter than listener.chunk_timeout")
	}
	if l.Reconnect != nil {
		if err := l.Reconnect.Validate(); err != nil {
			return fmt.Errorf("listener.reconnect: %w", err)
		}
	}
	return nil
}

// RetryConfig represents resubscription configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the number of consecutive retryable failures without progress before giving up
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 10
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(1 * time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// Validate checks if the retry configuration is valid.
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if r.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff_multiplier must be at least 1")
	}
	if r.MaxBackoff.Duration < r.InitialBackoff.Duration {
		return fmt.Errorf("max_backoff must not be shorter than initial_backoff")
	}
	return nil
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Driver selects the store: "sqlite3" (default) or "postgres"
	Driver string `yaml:"driver" json:"driver" toml:"driver"`

	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// DSN is the PostgreSQL connection string
	DSN string `yaml:"dsn" json:"dsn" toml:"dsn"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	// WAL mode is recommended so the API can read while the listener writes
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the SQLite synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`

	// ConnMaxLifetime recycles pooled connections after this long (0 = never)
	ConnMaxLifetime common.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" toml:"conn_max_lifetime"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.Driver == "" {
		d.Driver = DriverSQLite
	}
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
}

// Validate checks if the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("db.path is required for the sqlite3 driver")
		}
		if !slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
			return fmt.Errorf("db.journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
		}
		if !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
			return fmt.Errorf("db.synchronous must be one of: FULL, NORMAL, OFF")
		}
	case DriverPostgres:
		if d.DSN == "" {
			return fmt.Errorf("db.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("db.driver must be one of: %s, %s", DriverSQLite, DriverPostgres)
	}

	if d.MaxIdleConnections > d.MaxOpenConnections {
		return fmt.Errorf("db.max_idle_connections must not exceed db.max_open_connections")
	}

	return nil
}

// MaintenanceConfig configures SQLite maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval common.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// VacuumOnStartup runs maintenance immediately on startup
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = common.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" {
		validModes := []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
		if !slices.Contains(validModes, m.WALCheckpointMode) {
			return fmt.Errorf("maintenance.wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
		}
	}

	return nil
}

// ProcessorConfig binds a processor type to the on-chain code it interprets.
type ProcessorConfig struct {
	// Name is a unique human readable label for this processor
	Name string `yaml:"name" json:"name" toml:"name"`

	// Type is the processor family, e.g. "security_mint_fund"
	Type string `yaml:"type" json:"type" toml:"type"`

	// ModuleRef is the hex encoded reference of the deployed module
	ModuleRef string `yaml:"module_ref" json:"module_ref" toml:"module_ref"`

	// ContractName is the init function name, e.g. "init_security_mint_fund"
	ContractName string `yaml:"contract_name" json:"contract_name" toml:"contract_name"`
}

// Validate checks if the processor configuration is valid.
func (p *ProcessorConfig) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}

	if _, err := processor.ParseType(p.Type); err != nil {
		return err
	}

	ref := strings.TrimPrefix(p.ModuleRef, "0x")
	raw, err := hexutil.Decode("0x" + ref)
	if err != nil || len(raw) != 32 { //nolint:mnd
		return fmt.Errorf("module_ref must be a 32 byte hex string")
	}

	if !strings.HasPrefix(p.ContractName, "init_") {
		return fmt.Errorf("contract_name must start with \"init_\"")
	}

	return nil
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - listener: Finalized block listener state machine
	//   - node-client: Node gateway calls
	//   - dispatcher: Routing of contract calls to processors
	//   - processor: Contract event processors
	//   - checkpoint: Checkpoint store
	//   - contracts: Tracked contract store
	//   - db: Connections and migrations
	//   - maintenance: Database maintenance
	//   - metrics: Metrics server
	//   - api: Status API
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return common.ToLowerWithTrim(level)
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// APIConfig configures the read-only status API.
type APIConfig struct {
	// Enabled controls whether the API server is started
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the API server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// ReadTimeout bounds reading a request
	ReadTimeout common.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`

	// WriteTimeout bounds writing a response
	WriteTimeout common.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections between requests
	IdleTimeout common.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// CORS contains cross-origin settings
	CORS CORSConfig `yaml:"cors" json:"cors" toml:"cors"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// ApplyDefaults sets default values for optional API configuration fields.
func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = common.NewDuration(60 * time.Second) //nolint:mnd
	}
	if a.CORS.Enabled && len(a.CORS.AllowedOrigins) == 0 {
		a.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks if the API configuration is valid.
func (a *APIConfig) Validate() error {
	if a.Enabled && a.ListenAddress == "" {
		return fmt.Errorf("listen_address is required when the api is enabled")
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.Node.ApplyDefaults()
	c.Listener.ApplyDefaults()
	c.DB.ApplyDefaults()

	if c.Maintenance != nil {
		c.Maintenance.ApplyDefaults()
	}

	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}

	if c.API != nil {
		c.API.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Node.Validate(); err != nil {
		return err
	}

	if err := c.Listener.Validate(); err != nil {
		return err
	}

	if err := c.DB.Validate(); err != nil {
		return err
	}

	if c.Maintenance != nil {
		if err := c.Maintenance.Validate(); err != nil {
			return err
		}
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if c.API != nil {
		if err := c.API.Validate(); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}

	if len(c.Processors) == 0 {
		return fmt.Errorf("at least one processor must be configured")
	}

	names := make(map[string]struct{}, len(c.Processors))
	identities := make(map[string]string, len(c.Processors))
	for i, p := range c.Processors {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("processors[%d]: %w", i, err)
		}

		if _, exists := names[p.Name]; exists {
			return fmt.Errorf("processors[%d]: duplicate processor name '%s'", i, p.Name)
		}
		names[p.Name] = struct{}{}

		identity := strings.ToLower(strings.TrimPrefix(p.ModuleRef, "0x")) + "/" + p.ContractName
		if other, exists := identities[identity]; exists {
			return fmt.Errorf("processors[%d] (%s): module_ref and contract_name already used by '%s'", i, p.Name, other)
		}
		identities[identity] = p.Name
	}

	return nil
}
