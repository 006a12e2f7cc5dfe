// Package mtls builds the client-certificate TLS configuration used to
// authenticate the agent against the DebTrack server.
package mtls

import (
	"crypto/tls"
	"fmt"
)

// BuildTLSConfig returns a TLS config with the client certificate loaded
// from the given PEM files. When keyFile is empty the private key is
// expected to live in the certificate file itself. Returns nil when no
// certificate is configured.
func BuildTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" {
		return nil, nil
	}
	if keyFile == "" {
		keyFile = certFile
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
	}, nil
}
