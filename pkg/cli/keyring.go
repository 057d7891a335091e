package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/99designs/keyring"
	"golang.org/x/term"
)

const (
	keyringServiceName  = "org.pinecil.tools"
	keyringTokenService = "githubtoken"
	keyringDirectory    = "~/.pinecil_keys"
)

type backendType struct {
	config *Config
}

func (b backendType) String() string {
	if b.config == nil || len(b.config.Backend.AllowedBackends) == 0 {
		return string(keyring.InvalidBackend)
	}
	return string(b.config.Backend.AllowedBackends[0])
}

func (b backendType) Set(v string) error {
	value := keyring.BackendType(v)
	if b.config == nil {
		return fmt.Errorf("invalid backendType")
	}
	if v == "" {
		return nil
	}
	for _, name := range keyring.AvailableBackends() {
		if name == value {
			b.config.Backend.AllowedBackends = []keyring.BackendType{name}
			return nil
		}
	}
	return fmt.Errorf("unsupported credential storage")
}

func (c *Config) getPassword(prompt string) (string, error) {
	if c.password != nil && *c.password != "" {
		return *c.password, nil
	}

	var w io.Writer
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fd = int(os.Stderr.Fd())
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("no terminal output available for password prompt")
		}
		w = os.Stderr
	} else {
		w = os.Stdout
	}

	fmt.Fprintf(w, "%s: ", prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(w)
	password := string(b)
	c.password = &password
	return password, nil
}

func (c *Config) openKeyring() (keyring.Keyring, error) {
	config := c.Backend
	if config.FileDir == "" {
		config.FileDir = keyringDirectory
	}
	return keyring.Open(config)
}

func (c *Config) fullTokenName() string {
	return keyringTokenService + "." + c.KeyringTokenName
}

// LoadTokenFromKeyring loads a GitHub token from the system keyring.
//
// The name must match the value provided to SaveTokenToKeyring.
func (c *Config) LoadTokenFromKeyring() (string, error) {
	if c.KeyringTokenName == "" {
		return "", ErrNoTokenSpecified
	}
	kr, err := c.openKeyring()
	if err != nil {
		return "", err
	}

	item, err := kr.Get(c.fullTokenName())
	if err != nil {
		return "", fmt.Errorf("could not load token: %w", err)
	}
	return strings.TrimSpace(string(item.Data)), nil
}

// SaveTokenToKeyring writes a GitHub API token to the system keyring.
//
// The name identifies the token for future use and does not need to match the GitHub username.
func (c *Config) SaveTokenToKeyring(token string) error {
	if c.KeyringTokenName == "" {
		return ErrNoTokenSpecified
	}
	kr, err := c.openKeyring()
	if err != nil {
		return err
	}

	if err := kr.Set(keyring.Item{
		Key:   c.fullTokenName(),
		Data:  []byte(strings.TrimSpace(token)),
		Label: "Pinecil tools GitHub token",
	}); err != nil {
		return fmt.Errorf("failed to enroll token in keyring: %s", err)
	}
	c.githubToken = strings.TrimSpace(token)
	return nil
}

// DeleteToken removes the GitHub token from the system keyring.
func (c *Config) DeleteToken() error {
	kr, err := c.openKeyring()
	if err != nil {
		return err
	}
	c.githubToken = ""
	return kr.Remove(c.fullTokenName())
}
