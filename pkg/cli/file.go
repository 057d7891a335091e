package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/99designs/keyring"
	"gopkg.in/yaml.v3"

	"github.com/pinecil-go/pinecil/internal/log"
)

// fileConfig is the YAML schema accepted by Config.LoadFile:
//
//	address: C0:FF:EE:00:00:01
//	name: Pinecil-0123ABCD
//	ble_backend: goble
//	bt_adapter: hci1
//	scan_timeout: 20s
//	cache_file: /home/me/.config/pinecil/irons.json
//	github_token_name: personal
//	keyring_type: file
//	keyring_file_dir: ~/.pinecil_keys
type fileConfig struct {
	Address         string `yaml:"address"`
	Name            string `yaml:"name"`
	BLEBackend      string `yaml:"ble_backend"`
	BtAdapter       string `yaml:"bt_adapter"`
	ScanTimeout     string `yaml:"scan_timeout"`
	CacheFile       string `yaml:"cache_file"`
	GitHubTokenName string `yaml:"github_token_name"`
	KeyringType     string `yaml:"keyring_type"`
	KeyringFileDir  string `yaml:"keyring_file_dir"`
}

func setIfEmpty(dst *string, value, label string) {
	if *dst == "" && value != "" {
		*dst = value
		log.Debug("Set %s to '%s' from config file", label, value)
	}
}

// LoadFile fills unset fields of c from the YAML file at path. An empty path is ignored. Like
// [Config.ReadFromEnvironment], values that are already populated are not overwritten, so the
// precedence is flags, then environment, then file.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == os.Getenv(EnvPinecilConfig) {
			log.Warning("Config file %s does not exist", path)
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if c.Flags.isSet(FlagIron) {
		setIfEmpty(&c.Address, file.Address, "address")
		setIfEmpty(&c.Name, file.Name, "name")
		setIfEmpty(&c.BLEBackend, file.BLEBackend, "BLE backend")
		setIfEmpty(&c.BtAdapterID, file.BtAdapter, "Bluetooth adapter")
		setIfEmpty(&c.CacheFilename, file.CacheFile, "cache file")
		if c.ScanTimeout == 0 && file.ScanTimeout != "" {
			d, err := time.ParseDuration(file.ScanTimeout)
			if err != nil {
				return fmt.Errorf("invalid scan_timeout in %s: %w", path, err)
			}
			c.ScanTimeout = d
		}
	}
	if c.Flags.isSet(FlagGitHub) {
		setIfEmpty(&c.KeyringTokenName, file.GitHubTokenName, "GitHub token name")
		setIfEmpty(&c.Backend.FileDir, file.KeyringFileDir, "keyring File Path")
		if file.KeyringType != "" && c.BackendType.String() == string(keyring.InvalidBackend) {
			if err := c.BackendType.Set(file.KeyringType); err != nil {
				return fmt.Errorf("invalid keyring_type in %s: %w", path, err)
			}
		}
	}
	return nil
}
