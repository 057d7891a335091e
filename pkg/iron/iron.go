// Package iron is a client for Pinecil soldering irons running IronOS with BLE enabled.
//
// An Iron wraps a single GATT session. Reads and writes connect on demand, so a typical program
// looks like:
//
//	beacon, err := iron.Discover(ctx, adapter, 10*time.Second)
//	...
//	pinecil := iron.NewFromBeacon(adapter, beacon)
//	defer pinecil.Disconnect()
//	live, err := pinecil.GetLiveData(ctx)
//
// Calls on an Iron must not be issued concurrently.
package iron

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/connector"
	"github.com/pinecil-go/pinecil/pkg/connector/ble"
	"github.com/pinecil-go/pinecil/pkg/protocol"
)

// Dialer opens a new connection to an iron.
type Dialer interface {
	Dial(ctx context.Context) (connector.Connector, error)
}

// Discover scans for up to timeout and returns the first iron that advertises the bulk service.
// It returns protocol.ErrDeviceNotFound if none answers in time.
func Discover(ctx context.Context, adapter ble.Adapter, timeout time.Duration) (*ble.Beacon, error) {
	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	beacon, err := ble.ScanBeacon(scanCtx, adapter, ble.Filter{})
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return beacon, err
}

// An Iron represents one Pinecil.
type Iron struct {
	dialer  Dialer
	name    string
	address string

	conn  connector.Connector
	stale bool
	info  *protocol.DeviceInfo
}

// New creates an Iron that uses dialer to open connections. The name and address are reported
// by GetDeviceInfo and are not interpreted.
func New(dialer Dialer, name, address string) *Iron {
	return &Iron{
		dialer:  dialer,
		name:    name,
		address: address,
	}
}

// NewFromBeacon creates an Iron for a device found by Discover.
func NewFromBeacon(adapter ble.Adapter, beacon *ble.Beacon) *Iron {
	return New(ble.NewDialer(adapter, beacon), beacon.LocalName, beacon.Address)
}

// NewFromAddress creates an Iron for a known address without scanning first. The local name is
// unknown until the device is discovered, so GetDeviceInfo reports the address in its place.
func NewFromAddress(adapter ble.Adapter, address string) *Iron {
	beacon := &ble.Beacon{Address: address, Connectable: true}
	return New(ble.NewDialer(adapter, beacon), address, address)
}

func (i *Iron) Name() string {
	return i.name
}

func (i *Iron) Address() string {
	return i.address
}

func (i *Iron) IsConnected() bool {
	return i.conn != nil && !i.stale
}

// Connect opens a session to the iron. It does nothing if a healthy session is already open. If
// the previous session failed, it is closed before dialing again.
func (i *Iron) Connect(ctx context.Context) error {
	if i.IsConnected() {
		return nil
	}
	if i.stale {
		log.Debug("Closing stale connection to %s", i.address)
		i.Disconnect()
	}

	conn, err := i.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	i.conn = conn
	return nil
}

// Disconnect closes the session, if any.
func (i *Iron) Disconnect() {
	if i.conn != nil {
		if err := i.conn.Close(); err != nil {
			log.Warning("Error closing connection to %s: %s", i.address, err)
		}
		i.conn = nil
	}
	i.stale = false
}

func (i *Iron) markStale(err error) {
	if errors.Is(err, protocol.ErrConnectionFailed) {
		log.Debug("Marking connection to %s stale: %s", i.address, err)
		i.stale = true
	}
}

func (i *Iron) readRaw(ctx context.Context, c protocol.Characteristic) ([]byte, error) {
	if c.UUID() == "" {
		return nil, fmt.Errorf("%w: %s", protocol.ErrNotSupported, c)
	}
	if err := i.Connect(ctx); err != nil {
		return nil, err
	}
	payload, err := i.conn.ReadCharacteristic(ctx, c.Service(), c.UUID())
	if err != nil {
		i.markStale(err)
		return nil, err
	}
	log.Debug("Read %s: %02x", protocol.QualifiedName(c), payload)
	return payload, nil
}

// Read returns the decoded value of a characteristic. The dynamic type of the result depends on
// the characteristic; see pkg/protocol.
func (i *Iron) Read(ctx context.Context, c protocol.Characteristic) (any, error) {
	payload, err := i.readRaw(ctx, c)
	if err != nil {
		return nil, err
	}
	return c.Decode(payload)
}

// Write validates and encodes value for setting, then writes it. Nothing is sent if the value is
// rejected.
func (i *Iron) Write(ctx context.Context, setting protocol.SettingChar, value any) error {
	payload, err := setting.Encode(value)
	if err != nil {
		return err
	}
	if err := i.Connect(ctx); err != nil {
		return err
	}
	log.Debug("Write %s: %02x", protocol.QualifiedName(setting), payload)
	if err := i.conn.WriteCharacteristic(ctx, setting.Service(), setting.UUID(), payload); err != nil {
		i.markStale(err)
		return err
	}
	return nil
}

// GetDeviceInfo returns the iron's identity. The bulk characteristics are read on the first call
// only.
func (i *Iron) GetDeviceInfo(ctx context.Context) (*protocol.DeviceInfo, error) {
	if i.info != nil {
		info := *i.info
		return &info, nil
	}

	info := protocol.DeviceInfo{Name: i.name, Address: i.address}
	fields := []struct {
		char protocol.BulkChar
		dst  *string
	}{
		{protocol.BulkBuild, &info.Build},
		{protocol.BulkDeviceSN, &info.DeviceSN},
		{protocol.BulkDeviceID, &info.DeviceID},
	}
	for _, f := range fields {
		v, err := i.Read(ctx, f.char)
		if err != nil {
			return nil, err
		}
		*f.dst = v.(string)
	}

	i.info = &info
	result := info
	return &result, nil
}

// CachedDeviceInfo returns what GetDeviceInfo has already read, or nil if it has not been called
// successfully. It never talks to the iron.
func (i *Iron) CachedDeviceInfo() *protocol.DeviceInfo {
	if i.info == nil {
		return nil
	}
	info := *i.info
	return &info
}

// GetLiveData reads all live values in a single request.
func (i *Iron) GetLiveData(ctx context.Context) (*protocol.LiveData, error) {
	payload, err := i.readRaw(ctx, protocol.BulkLiveData)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeLiveData(payload)
}

// GetSettings reads the requested settings, or all of them if none are given. The result is
// keyed by setting name. Settings are read in table order regardless of argument order.
func (i *Iron) GetSettings(ctx context.Context, settings ...protocol.SettingChar) (map[string]any, error) {
	wanted := make(map[protocol.SettingChar]bool, len(settings))
	for _, s := range settings {
		if s.UUID() == "" {
			return nil, fmt.Errorf("%w: %s", protocol.ErrNotSupported, s)
		}
		wanted[s] = true
	}

	result := make(map[string]any)
	for _, s := range protocol.Settings() {
		if len(wanted) > 0 && !wanted[s] {
			continue
		}
		v, err := i.Read(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s, err)
		}
		result[s.String()] = v
	}
	return result, nil
}

// SetTemperature changes the soldering setpoint, in the iron's configured unit.
func (i *Iron) SetTemperature(ctx context.Context, temp int) error {
	return i.Write(ctx, protocol.SettingSetpointTemp, temp)
}

// TemperatureUnit reads the unit the iron displays temperatures in. Setpoints written with
// SetTemperature are interpreted in this unit.
func (i *Iron) TemperatureUnit(ctx context.Context) (protocol.TempUnit, error) {
	v, err := i.Read(ctx, protocol.SettingTempUnit)
	if err != nil {
		return protocol.Celsius, err
	}
	return v.(protocol.TempUnit), nil
}

// SetTemperatureIn changes the soldering setpoint to temp degrees of unit, converting to the
// iron's configured unit first. The result is rounded to whole degrees.
func (i *Iron) SetTemperatureIn(ctx context.Context, temp float64, unit protocol.TempUnit) error {
	ironUnit, err := i.TemperatureUnit(ctx)
	if err != nil {
		return err
	}
	converted := protocol.ConvertTemperature(temp, unit, ironUnit)
	return i.SetTemperature(ctx, int(math.Round(converted)))
}

// SaveSettings persists the current settings to flash. Until then, changes are lost on power
// off.
func (i *Iron) SaveSettings(ctx context.Context) error {
	return i.Write(ctx, protocol.SettingsSave, true)
}

// ResetSettings restores firmware defaults.
func (i *Iron) ResetSettings(ctx context.Context) error {
	return i.Write(ctx, protocol.SettingsReset, true)
}
