// Package adapter holds helpers shared by the outbound adapters.
package adapter

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// MakeTLSConfig builds the mutual-TLS client config for the broker
// connections. All args are filepaths to PEM material.
func MakeTLSConfig(ca, cert, key string) (*tls.Config, error) {
	const op = "adapter.MakeTLSConfig"

	caCertPool, err := loadCertPool(ca)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	clientCert, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		ClientCAs:    caCertPool,
		Certificates: []tls.Certificate{clientCert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
	}, nil
}

func loadCertPool(ca string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(ca)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}
