package config

import "os"

// parseEnv overlays Config fields from environment variables:
//
//	PEERCHAT_DATABASE   database DSN
//	PEERCHAT_LISTEN     QUIC listen address
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("PEERCHAT_DATABASE"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("PEERCHAT_LISTEN"); ok {
		cfg.ListenAddr = v
	}
}
