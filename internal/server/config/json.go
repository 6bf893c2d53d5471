package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clinicauth/internal/flagx"
	"github.com/dmitrijs2005/clinicauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	QueryTimeout     timex.Duration `json:"query_timeout"`
	BcryptCost       int            `json:"bcrypt_cost"`
	LogBackend       string         `json:"log_backend"`
	RunMigrations    bool           `json:"run_migrations"`
}

// parseJson overlays config with the file named by -c or -config. Keys
// missing from the file keep their current values. Without either flag
// nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{
		EndpointAddrGRPC: config.EndpointAddrGRPC,
		DatabaseDSN:      config.DatabaseDSN,
		SecretKey:        config.SecretKey,
		QueryTimeout:     timex.Duration{Duration: config.QueryTimeout},
		BcryptCost:       config.BcryptCost,
		LogBackend:       config.LogBackend,
		RunMigrations:    config.RunMigrations,
	}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.QueryTimeout = c.QueryTimeout.Duration
	config.BcryptCost = c.BcryptCost
	config.LogBackend = c.LogBackend
	config.RunMigrations = c.RunMigrations
	return nil
}
