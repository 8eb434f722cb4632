package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// BackendTLS builds a *tls.Config for calls to the rental backend.
// Returns nil, nil if no client cert or CA is configured (system defaults).
func (c *Config) BackendTLS() (*tls.Config, error) {
	if c.BackendTLSCert == "" && c.BackendTLSKey == "" && c.BackendTLSCACert == "" {
		return nil, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if c.BackendTLSCert != "" || c.BackendTLSKey != "" {
		cert, err := tls.LoadX509KeyPair(c.BackendTLSCert, c.BackendTLSKey)
		if err != nil {
			return nil, fmt.Errorf("load backend client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if c.BackendTLSCACert != "" {
		caPEM, err := os.ReadFile(c.BackendTLSCACert)
		if err != nil {
			return nil, fmt.Errorf("read backend CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("failed to parse backend CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	if c.BackendTLSServerName != "" {
		tlsConfig.ServerName = c.BackendTLSServerName
	}

	return tlsConfig, nil
}
