package main

import (
	"crypto/x509"
	"encoding/pem"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/pinecil-go/pinecil/pkg/proxy"
)

func assertEquals(t *testing.T, expected, actual interface{}, message string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", message, expected, actual)
	}
}

func TestParseConfig(t *testing.T) {
	envs := []string{EnvTlsCert, EnvTlsKey, EnvHost, EnvPort, EnvVerbose, EnvTimeout, EnvTokenSecret, EnvRate}
	orig := make(map[string]string)
	for _, env := range envs {
		orig[env] = os.Getenv(env)
		os.Unsetenv(env)
	}
	origArgs := os.Args
	os.Args = []string{"cmd"}

	defer func() {
		for env, value := range orig {
			os.Setenv(env, value)
		}
		os.Args = origArgs
	}()

	t.Run("default values", func(t *testing.T) {
		err := readFromEnvironment()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		assertEquals(t, "localhost", httpConfig.host, "host")
		assertEquals(t, defaultPort, httpConfig.port, "port")
		assertEquals(t, proxy.DefaultTimeout, httpConfig.timeout, "timeout")
		assertEquals(t, "", httpConfig.certFilename, "certFilename")
		assertEquals(t, "", httpConfig.keyFilename, "keyFilename")
		assertEquals(t, "", httpConfig.tokenSecret, "tokenSecret")
		assertEquals(t, 0.0, httpConfig.rate, "rate")
		assertEquals(t, false, httpConfig.verbose, "verbose")
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv(EnvTlsCert, "/env/cert.pem")
		os.Setenv(EnvTlsKey, "/env/key.pem")
		os.Setenv(EnvHost, "envhost")
		os.Setenv(EnvPort, "8443")
		os.Setenv(EnvVerbose, "true")
		os.Setenv(EnvTimeout, "30s")
		os.Setenv(EnvTokenSecret, "0123456789abcdef")
		os.Setenv(EnvRate, "2.5")

		err := readFromEnvironment()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		assertEquals(t, "/env/cert.pem", httpConfig.certFilename, "certFilename")
		assertEquals(t, "/env/key.pem", httpConfig.keyFilename, "keyFilename")
		assertEquals(t, "envhost", httpConfig.host, "host")
		assertEquals(t, 8443, httpConfig.port, "port")
		assertEquals(t, 30*time.Second, httpConfig.timeout, "timeout")
		assertEquals(t, "0123456789abcdef", httpConfig.tokenSecret, "tokenSecret")
		assertEquals(t, 2.5, httpConfig.rate, "rate")
		assertEquals(t, true, httpConfig.verbose, "verbose")
	})

	t.Run("flags override environment variables", func(t *testing.T) {
		os.Args = []string{"cmd", "-cert", "/flag/cert.pem", "-tls-key", "/flag/key.pem", "-host", "flaghost", "-port", "9090", "-timeout", "60s", "-rate", "4"}

		flag.Parse()
		err := readFromEnvironment()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		assertEquals(t, "/flag/cert.pem", httpConfig.certFilename, "certFilename")
		assertEquals(t, "/flag/key.pem", httpConfig.keyFilename, "keyFilename")
		assertEquals(t, "flaghost", httpConfig.host, "host")
		assertEquals(t, 9090, httpConfig.port, "port")
		assertEquals(t, 60*time.Second, httpConfig.timeout, "timeout")
		assertEquals(t, 4.0, httpConfig.rate, "rate")
	})

	t.Run("invalid port", func(t *testing.T) {
		httpConfig.port = defaultPort
		os.Setenv(EnvPort, "eighty")
		if err := readFromEnvironment(); err == nil {
			t.Error("Expected an error for a non-numeric port")
		}
		os.Unsetenv(EnvPort)
	})
}

func TestSplitOrigins(t *testing.T) {
	origins := splitOrigins(" example.com, ,*.local ")
	if len(origins) != 2 || origins[0] != "example.com" || origins[1] != "*.local" {
		t.Errorf("Unexpected origins: %q", origins)
	}
	if origins := splitOrigins(""); origins != nil {
		t.Errorf("Expected no origins, got %q", origins)
	}
}

func TestSelfSignedCertificate(t *testing.T) {
	certPEM, keyPEM, err := selfSignedCertificate("192.168.1.20")
	if err != nil {
		t.Fatal(err)
	}
	if len(keyPEM) == 0 {
		t.Fatal("Missing private key")
	}
	block, _ := pem.Decode(certPEM)
	if block == nil {
		t.Fatal("Certificate is not PEM encoded")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatal(err)
	}
	if err := cert.VerifyHostname("192.168.1.20"); err != nil {
		t.Errorf("Certificate does not cover the listening address: %s", err)
	}
	if err := cert.VerifyHostname("localhost"); err != nil {
		t.Errorf("Certificate does not cover localhost: %s", err)
	}
}
