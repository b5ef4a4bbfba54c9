package cassandra

import (
	"crypto/tls"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
)

// sslOptions builds the driver TLS settings. Returns nil when TLS is disabled.
// gocql loads the CA and client certificate files itself.
func sslOptions(cfg config.InternalTLSConfig) (*gocql.SslOptions, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	minVersion, err := config.ParseTLSVersion(cfg.MinVersion)
	if err != nil {
		return nil, fmt.Errorf("tls: %w", err)
	}

	return &gocql.SslOptions{
		Config: &tls.Config{
			MinVersion: minVersion,
		},
		CaPath:                 cfg.CAPath,
		CertPath:               cfg.CertPath,
		KeyPath:                cfg.KeyPath,
		EnableHostVerification: !cfg.InsecureSkipVerify,
	}, nil
}
