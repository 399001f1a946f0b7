// Package config holds runtime settings for the peerchat CLI.
package config

// Config fields:
//   - DatabaseDSN: sqlite file path, or a postgres:// URL to use a shared
//     database instead.
//   - ListenAddr: UDP host:port the QUIC endpoint binds to; port 0 picks
//     a free port.
//   - Verbose: enables debug-level logging.
type Config struct {
	DatabaseDSN string
	ListenAddr  string
	Verbose     bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "peerchat.db"
	c.ListenAddr = "0.0.0.0:0"
	c.Verbose = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
