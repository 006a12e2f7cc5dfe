package mtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestKeyPair(t *testing.T, combined bool) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "host.example.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "client.pem")
	if combined {
		if err := os.WriteFile(certFile, append(certPEM, keyPEM...), 0600); err != nil {
			t.Fatal(err)
		}
		return certFile, ""
	}

	keyFile = filepath.Join(dir, "client.key")
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		t.Fatal(err)
	}
	return certFile, keyFile
}

func TestBuildTLSConfigNoCert(t *testing.T) {
	cfg, err := BuildTLSConfig("", "")
	if err != nil {
		t.Fatalf("BuildTLSConfig returned error: %v", err)
	}
	if cfg != nil {
		t.Fatal("no certificate configured should yield a nil config")
	}
}

func TestBuildTLSConfigSeparateKey(t *testing.T) {
	certFile, keyFile := writeTestKeyPair(t, false)

	cfg, err := BuildTLSConfig(certFile, keyFile)
	if err != nil {
		t.Fatalf("BuildTLSConfig returned error: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("config carries %d certificates, want 1", len(cfg.Certificates))
	}
}

func TestBuildTLSConfigCombinedFile(t *testing.T) {
	certFile, _ := writeTestKeyPair(t, true)

	cfg, err := BuildTLSConfig(certFile, "")
	if err != nil {
		t.Fatalf("BuildTLSConfig returned error: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("config carries %d certificates, want 1", len(cfg.Certificates))
	}
}

func TestBuildTLSConfigMissingFile(t *testing.T) {
	if _, err := BuildTLSConfig("/nonexistent/client.pem", ""); err == nil {
		t.Fatal("expected an error for a missing certificate file")
	}
}
