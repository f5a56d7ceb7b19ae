package tlsutil

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDevCertificate(t *testing.T) {
	t.Run("writes a pair the server can load", func(t *testing.T) {
		dir := t.TempDir()

		certPath, keyPath, err := GenerateDevCertificate([]string{"localhost", "127.0.0.1"}, dir, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, CertFileName), certPath)

		creds, err := ServerTLSConfig(certPath, keyPath)
		require.NoError(t, err)
		assert.Equal(t, "tls", creds.Info().SecurityProtocol)

		raw, err := os.ReadFile(certPath)
		require.NoError(t, err)
		block, _ := pem.Decode(raw)
		require.NotNil(t, block)
		cert, err := x509.ParseCertificate(block.Bytes)
		require.NoError(t, err)
		assert.Contains(t, cert.DNSNames, "localhost")
		require.Len(t, cert.IPAddresses, 1)
		assert.Equal(t, "127.0.0.1", cert.IPAddresses[0].String())
	})

	t.Run("requires a host", func(t *testing.T) {
		_, _, err := GenerateDevCertificate(nil, t.TempDir(), time.Hour)
		assert.Error(t, err)
	})

	t.Run("server config fails on missing files", func(t *testing.T) {
		_, err := ServerTLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem")
		assert.Error(t, err)
	})
}
