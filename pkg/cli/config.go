/*
Package cli facilitates building command-line applications that talk to Pinecil irons. It defines
a [Config] type that can be used to register common command-line flags (using the Golang flag
package), environment variable equivalents, and an optional YAML configuration file.

The package uses [keyring]'s platform-agnostic interface for storing the optional GitHub API
token used by the firmware update check in an OS-dependent credential store.

# Examples

	import flag

	config, err := NewConfig(FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags() // Adds command-line flags for the iron address, BLE backend, etc.
	flag.Parse()
	config.ReadFromEnvironment()      // Fills in missing fields using environment variables
	if err := config.LoadFile(config.ConfigFile); err != nil {
		panic(err)
	}

	// Scans for the configured iron (or the first one found) and returns a client for it.
	pinecil, err := config.Connect(ctx)
	if err != nil {
		panic(err)
	}
	defer config.Close()
	defer pinecil.Disconnect()

Binaries that only need a subset of options can pass a narrower [Flag] mask, for example
NewConfig(FlagGitHub) for a tool that only checks for firmware updates.
*/
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/cache"
	"github.com/pinecil-go/pinecil/pkg/connector/ble"
	"github.com/pinecil-go/pinecil/pkg/connector/ble/goble"
	"github.com/pinecil-go/pinecil/pkg/connector/ble/tinygo"
	"github.com/pinecil-go/pinecil/pkg/iron"
	"github.com/pinecil-go/pinecil/pkg/protocol"
	"github.com/pinecil-go/pinecil/pkg/update"
)

// Environment variable names used are used by [Config.ReadFromEnvironment] to set common parameters.
const (
	EnvPinecilAddress       = "PINECIL_ADDRESS"
	EnvPinecilName          = "PINECIL_NAME"
	EnvPinecilBLEBackend    = "PINECIL_BLE_BACKEND"
	EnvPinecilBtAdapter     = "PINECIL_BT_ADAPTER"
	EnvPinecilScanTimeout   = "PINECIL_SCAN_TIMEOUT"
	EnvPinecilConfig        = "PINECIL_CONFIG"
	EnvPinecilCacheFile     = "PINECIL_CACHE_FILE"
	EnvPinecilGitHubToken   = "PINECIL_GITHUB_TOKEN_NAME"
	EnvPinecilKeyringType   = "PINECIL_KEYRING_TYPE"
	EnvPinecilKeyringPass   = "PINECIL_KEYRING_PASSWORD"
	EnvPinecilKeyringPath   = "PINECIL_KEYRING_PATH"
	EnvPinecilKeyringDebug  = "PINECIL_KEYRING_DEBUG"
	EnvPinecilVerboseLogger = "PINECIL_VERBOSE"
)

// BLE backends accepted by Config.BLEBackend.
const (
	BackendTinyGo = "tinygo"
	BackendGoBLE  = "goble"
)

// DefaultScanTimeout bounds discovery when neither a flag nor the environment sets one.
const DefaultScanTimeout = 10 * time.Second

const maxCachedIrons = 16

// Flag controls what options should be scanned from the command line and/or environment variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagIron   Flag = 1 // Enable iron selection and BLE options.
	FlagGitHub Flag = 2 // Enable GitHub token options for firmware update checks.
	FlagAll    Flag = FlagIron | FlagGitHub
)

var (
	ErrNoTokenSpecified = errors.New("GitHub token name not provided")
	ErrUnknownBackend   = errors.New("unknown BLE backend")
	ErrKeyNotFound      = keyring.ErrKeyNotFound
)

// Config fields determine how a client finds an iron and authenticates to GitHub.
type Config struct {
	Flags            Flag   // Controls which set of environment variables/CLI flags to use.
	Address          string // BLE address (or CoreBluetooth UUID on macOS) of the iron.
	Name             string // Advertised local name of the iron, e.g. Pinecil-0123ABCD.
	BLEBackend       string
	BtAdapterID      string
	ScanTimeout      time.Duration
	SkipScan         bool   // Connect to Address directly instead of scanning first.
	CacheFilename    string // JSON file of irons seen before; see pkg/cache.
	ConfigFile       string
	KeyringTokenName string // Username for the GitHub token in system keyring
	Backend          keyring.Config
	BackendType      backendType
	Debug            bool // Enable keyring debug messages

	password    *string
	githubToken string
	adapter     ble.Adapter
	cache       *cache.DeviceCache
}

func NewConfig(flags Flag) (*Config, error) {
	c := Config{
		Flags: flags,
		Backend: keyring.Config{
			ServiceName:              keyringServiceName,
			KeychainTrustApplication: true,
			KeyCtlScope:              "user",
		},
	}
	c.BackendType = backendType{&c}
	c.Backend.KeychainPasswordFunc = c.getPassword
	c.Backend.FilePasswordFunc = c.getPassword

	return &c, nil
}

// RegisterCommandLineFlags adds the options selected by c.Flags to the global flag set.
func (c *Config) RegisterCommandLineFlags() {
	c.RegisterFlags(flag.CommandLine)
}

// RegisterFlags adds the options selected by c.Flags to fs.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "Load defaults from YAML `file`. Defaults to $PINECIL_CONFIG.")
	if c.Flags.isSet(FlagIron) {
		fs.StringVar(&c.Address, "address", "", "BLE `address` of the iron. Defaults to $PINECIL_ADDRESS.")
		fs.StringVar(&c.Name, "name", "", "Advertised `name` of the iron. Defaults to $PINECIL_NAME.")
		fs.StringVar(&c.BLEBackend, "ble-backend", "", "BLE `backend` (tinygo|goble). Defaults to $PINECIL_BLE_BACKEND or tinygo.")
		fs.DurationVar(&c.ScanTimeout, "scan-timeout", 0, "Give up scanning after `duration`. Defaults to $PINECIL_SCAN_TIMEOUT or 10s.")
		fs.BoolVar(&c.SkipScan, "no-scan", false, "Connect to -address without scanning first")
		fs.StringVar(&c.CacheFilename, "cache", "", "Remember irons in JSON `file`. Defaults to $PINECIL_CACHE_FILE.")
		c.registerFlagsOsSpecific(fs)
	}
	if c.Flags.isSet(FlagGitHub) {
		fs.StringVar(&c.KeyringTokenName, "github-token-name", "", "System keyring `name` for GitHub API token. Defaults to $PINECIL_GITHUB_TOKEN_NAME.")
		var names []string
		for _, name := range keyring.AvailableBackends() {
			names = append(names, string(name))
		}
		sort.Strings(names)
		fs.Var(&c.BackendType, "keyring-type", "Keyring `type` ("+strings.Join(names, "|")+"). Defaults to $PINECIL_KEYRING_TYPE.")
		fs.StringVar(&c.Backend.FileDir, "keyring-file-dir", "", "keyring `directory` for file-backed keyring types. Defaults to "+keyringDirectory+".")
		fs.BoolVar(&c.Debug, "keyring-debug", false, "Enable keyring debug logging")
	}
}

// ReadFromEnvironment populates c using environment variables. Values that are already populated
// are not overwritten.
//
// Calling ReadFromEnvironment after flag.Parse() (or other initialization method) will prevent the
// environment from overriding explicit command-line parameters and avoid potentially misleading
// debug log messages.
func (c *Config) ReadFromEnvironment() {
	if c.ConfigFile == "" {
		c.ConfigFile = os.Getenv(EnvPinecilConfig)
		log.Debug("Set config file to '%s'", c.ConfigFile)
	}
	if c.Flags.isSet(FlagIron) {
		if c.Address == "" {
			c.Address = os.Getenv(EnvPinecilAddress)
			log.Debug("Set address to '%s'", c.Address)
		}
		if c.Name == "" {
			c.Name = os.Getenv(EnvPinecilName)
			log.Debug("Set name to '%s'", c.Name)
		}
		if c.BLEBackend == "" {
			c.BLEBackend = os.Getenv(EnvPinecilBLEBackend)
			log.Debug("Set BLE backend to '%s'", c.BLEBackend)
		}
		if c.CacheFilename == "" {
			c.CacheFilename = os.Getenv(EnvPinecilCacheFile)
			log.Debug("Set cache file to '%s'", c.CacheFilename)
		}
		if c.BtAdapterID == "" {
			c.BtAdapterID = os.Getenv(EnvPinecilBtAdapter)
			log.Debug("Set Bluetooth adapter to '%s'", c.BtAdapterID)
		}
		if c.ScanTimeout == 0 {
			if value, ok := os.LookupEnv(EnvPinecilScanTimeout); ok {
				if d, err := time.ParseDuration(value); err == nil {
					c.ScanTimeout = d
					log.Debug("Set scan timeout to %s", c.ScanTimeout)
				} else {
					log.Warning("Ignoring invalid %s: %s", EnvPinecilScanTimeout, err)
				}
			}
		}
	}
	if c.Flags.isSet(FlagGitHub) {
		if c.KeyringTokenName == "" {
			c.KeyringTokenName = os.Getenv(EnvPinecilGitHubToken)
			log.Debug("Set GitHub token name to '%s'", c.KeyringTokenName)
		}
		if c.BackendType.String() == string(keyring.InvalidBackend) {
			if err := c.BackendType.Set(os.Getenv(EnvPinecilKeyringType)); err == nil {
				log.Debug("Set keyring type to '%s'", c.BackendType)
			}
		}
		if c.password == nil {
			password := os.Getenv(EnvPinecilKeyringPass)
			c.password = &password
			if len(password) > 0 {
				log.Debug("Set keyring File Password to %s", strings.Repeat("*", len("hunter2")))
			}
		}
		if c.Backend.FileDir == "" {
			c.Backend.FileDir = os.Getenv(EnvPinecilKeyringPath)
			log.Debug("Set keyring File Path to '%s'", c.Backend.FileDir)
		}
		if !c.Debug {
			_, c.Debug = os.LookupEnv(EnvPinecilKeyringDebug)
			log.Debug("Set keyring Debug Logging to '%v'", c.Debug)
		}
	}
}

func (c *Config) scanTimeout() time.Duration {
	if c.ScanTimeout > 0 {
		return c.ScanTimeout
	}
	return DefaultScanTimeout
}

// Adapter opens the configured BLE backend. The adapter is shared by subsequent calls and
// released by [Config.Close].
func (c *Config) Adapter() (ble.Adapter, error) {
	if c.adapter != nil {
		return c.adapter, nil
	}

	var (
		adapter ble.Adapter
		err     error
	)
	switch strings.ToLower(c.BLEBackend) {
	case "", BackendTinyGo:
		log.Debug("Using tinygo BLE backend")
		adapter, err = tinygo.NewAdapter(c.BtAdapterID)
		if err != nil && tinygo.IsAdapterError(err) {
			return nil, errors.New(tinygo.AdapterErrorHelpMessage(err))
		}
	case BackendGoBLE:
		log.Debug("Using go-ble BLE backend")
		adapter, err = goble.NewAdapter(c.BtAdapterID)
		if err != nil && goble.IsAdapterError(err) {
			return nil, errors.New(goble.AdapterErrorHelpMessage(err))
		}
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnknownBackend, c.BLEBackend)
	}
	if err != nil {
		return nil, err
	}
	c.adapter = adapter
	return adapter, nil
}

// Scan returns the first iron that matches c.Address and c.Name. Empty fields match any iron.
func (c *Config) Scan(ctx context.Context) (*ble.Beacon, error) {
	adapter, err := c.Adapter()
	if err != nil {
		return nil, err
	}
	scanCtx, cancel := context.WithTimeout(ctx, c.scanTimeout())
	defer cancel()

	beacon, err := ble.ScanBeacon(scanCtx, adapter, ble.Filter{Address: c.Address, LocalName: c.Name})
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return beacon, err
}

// Connect returns a client for the configured iron. The client connects lazily on first use,
// except that an iron which is not advertising fails here with protocol.ErrDeviceNotFound.
func (c *Config) Connect(ctx context.Context) (*iron.Iron, error) {
	if !c.Flags.isSet(FlagIron) {
		return nil, fmt.Errorf("configuration does not permit iron connections")
	}
	adapter, err := c.Adapter()
	if err != nil {
		return nil, err
	}
	if c.SkipScan {
		if c.Address == "" {
			return nil, fmt.Errorf("-no-scan requires an address")
		}
		log.Debug("Skipping scan for %s", c.Address)
		if known, ok := c.DeviceCache().Lookup(c.Address); ok && known.Name != "" {
			log.Debug("Using cached name %s", known.Name)
			beacon := &ble.Beacon{Address: c.Address, LocalName: known.Name, Connectable: true}
			return iron.NewFromBeacon(adapter, beacon), nil
		}
		return iron.NewFromAddress(adapter, c.Address), nil
	}

	log.Info("Scanning for Pinecil...")
	beacon, err := c.Scan(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("Found %s (%s)", beacon.LocalName, beacon.Address)
	return iron.NewFromBeacon(adapter, beacon), nil
}

// DeviceCache returns the cache loaded from c.CacheFilename. If no file is configured, or it does
// not exist yet, the result is an empty cache.
func (c *Config) DeviceCache() *cache.DeviceCache {
	if c.cache != nil {
		return c.cache
	}
	c.cache = cache.New(maxCachedIrons)
	if c.CacheFilename == "" {
		return c.cache
	}
	loaded, err := cache.ImportFromFile(c.CacheFilename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warning("Ignoring unreadable cache %s: %s", c.CacheFilename, err)
		}
		return c.cache
	}
	loaded.MaxEntries = maxCachedIrons
	c.cache = loaded
	return c.cache
}

// RememberIron records what pinecil has reported about itself and writes the cache back to
// c.CacheFilename. It does nothing if no cache file is configured.
func (c *Config) RememberIron(pinecil *iron.Iron) error {
	if c.CacheFilename == "" || pinecil == nil {
		return nil
	}
	info := pinecil.CachedDeviceInfo()
	if info == nil {
		info = &protocol.DeviceInfo{Name: pinecil.Name(), Address: pinecil.Address()}
	}
	devices := c.DeviceCache()
	devices.Update(info, time.Now())
	return devices.ExportToFile(c.CacheFilename)
}

// Close releases the BLE adapter, if one was opened.
func (c *Config) Close() {
	if c.adapter != nil {
		if err := c.adapter.Close(); err != nil {
			log.Warning("Error closing BLE adapter: %s", err)
		}
		c.adapter = nil
	}
}

// GitHubToken returns the configured GitHub API token. It returns ErrNoTokenSpecified if no token
// name is configured; callers may then proceed unauthenticated.
func (c *Config) GitHubToken() (string, error) {
	if c.githubToken != "" {
		return c.githubToken, nil
	}
	if !c.Flags.isSet(FlagGitHub) || c.KeyringTokenName == "" {
		return "", ErrNoTokenSpecified
	}
	token, err := c.LoadTokenFromKeyring()
	if err != nil {
		return "", err
	}
	c.githubToken = token
	return token, nil
}

// UpdateChecker returns a release checker that authenticates with the configured GitHub token,
// if any.
func (c *Config) UpdateChecker(userAgent string) (*update.Checker, error) {
	token, err := c.GitHubToken()
	if err != nil && !errors.Is(err, ErrNoTokenSpecified) {
		return nil, err
	}
	return update.NewChecker(userAgent, token), nil
}

// Describe formats err for display, noting when a failed write may still have been applied.
func Describe(err error) string {
	if protocol.MayHaveSucceeded(err) {
		return fmt.Sprintf("%s (the iron may have applied the change)", err)
	}
	return err.Error()
}
