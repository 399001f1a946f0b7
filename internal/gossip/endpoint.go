package gossip

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"math/big"
	"time"

	quic "github.com/quic-go/quic-go"
)

const alpn = "peerchat/1"

// Endpoint is this process's network identity: an ed25519 key pair and a
// QUIC listener bound to a local UDP address.
type Endpoint struct {
	key      ed25519.PrivateKey
	id       ID
	listener *quic.Listener
}

// Bind creates an endpoint listening on addr. When seed is non-nil it must
// be an ed25519 seed (32 bytes) and fixes the endpoint identity; a nil seed
// yields a fresh random identity for this run.
func Bind(ctx context.Context, addr string, seed []byte) (*Endpoint, error) {
	var key ed25519.PrivateKey
	if seed != nil {
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("identity seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
		}
		key = ed25519.NewKeyFromSeed(seed)
	} else {
		var err error
		_, key, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
	}

	tlsConf, err := serverTLSConfig(key)
	if err != nil {
		return nil, err
	}

	listener, err := quic.ListenAddr(addr, tlsConf, quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quic listen on %s: %w", addr, err)
	}

	ep := &Endpoint{key: key, listener: listener}
	copy(ep.id[:], key.Public().(ed25519.PublicKey))
	return ep, nil
}

// ID returns the peer identifier derived from the endpoint's public key.
func (e *Endpoint) ID() ID {
	return e.id
}

// Addr returns this endpoint's dialable descriptor.
func (e *Endpoint) Addr() AddrInfo {
	return AddrInfo{ID: e.id, Addr: e.listener.Addr().String()}
}

// Close shuts the listener down. Subscriptions created from this endpoint
// stop accepting new neighbors once closed.
func (e *Endpoint) Close() error {
	return e.listener.Close()
}

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  5 * time.Minute,
		KeepAlivePeriod: 15 * time.Second,
	}
}

// serverTLSConfig self-signs a certificate with the endpoint's identity key.
// Peer authenticity is established by the join handshake, not the TLS layer.
func serverTLSConfig(key ed25519.PrivateKey) (*tls.Config, error) {
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		DNSNames:     []string{"peerchat"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, key.Public(), key)
	if err != nil {
		return nil, err
	}
	cert := tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{alpn},
	}, nil
}

func clientTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{alpn},
	}
}
