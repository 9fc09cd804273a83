package security

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TLSConfig describes client TLS for a backing service such as Redis.
// The zero value means plaintext.
type TLSConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SkipVerify disables server certificate verification. Development only.
	SkipVerify bool   `yaml:"skip_verify" mapstructure:"skip_verify"`
	CAFile     string `yaml:"ca_file" mapstructure:"ca_file"`
	CertFile   string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile    string `yaml:"key_file" mapstructure:"key_file"`
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
}

// Validate checks that the settings are consistent.
func (c *TLSConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return errors.New("tls: cert_file and key_file must be set together")
	}
	return nil
}

// Build returns the *tls.Config, or nil when TLS is off. TLS 1.2 is the floor.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil || !c.Enabled {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify,
		ServerName:         c.ServerName,
		MinVersion:         tls.VersionTLS12,
	}
	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("tls: read ca_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("tls: no certificates in %s", c.CAFile)
		}
		cfg.RootCAs = pool
	}
	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tls: load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
