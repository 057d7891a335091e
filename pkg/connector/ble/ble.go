package ble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/connector"
	"github.com/pinecil-go/pinecil/pkg/protocol"
)

var (
	ErrAdapterInvalidID = protocol.NewError("the bluetooth adapter ID is invalid", false, false)
	ErrNotConnectable   = protocol.NewError("the iron is not accepting connections", false, true)
)

// Filter narrows discovery to a specific iron. Empty fields match anything.
type Filter struct {
	Address   string
	LocalName string
}

func (f Filter) match(b *Beacon) bool {
	if f.Address != "" && !strings.EqualFold(f.Address, b.Address) {
		return false
	}
	if f.LocalName != "" && f.LocalName != b.LocalName {
		return false
	}
	return true
}

// ScanBeacon returns the first iron that advertises the bulk service and matches filter. If ctx
// reaches its deadline first, the returned error is protocol.ErrDeviceNotFound.
func ScanBeacon(ctx context.Context, adapter Adapter, filter Filter) (*Beacon, error) {
	var result *Beacon
	log.Debug("Scanning for %s...", protocol.BulkServiceUUID)
	err := adapter.Scan(ctx, protocol.BulkServiceUUID, func(b *Beacon) bool {
		if !filter.match(b) {
			log.Debug("Ignoring %s (%s)", b.Address, b.LocalName)
			return false
		}
		result = b
		return true
	})

	if result != nil {
		log.Debug("Found %s (%s), RSSI %d", result.Address, result.LocalName, result.RSSI)
		return result, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, protocol.ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, protocol.ErrDeviceNotFound
}

// ScanBeacons collects every iron that advertises the bulk service and matches filter until ctx
// is done. Repeated advertisements from one address keep the strongest RSSI. Results are in
// order of first sighting.
func ScanBeacons(ctx context.Context, adapter Adapter, filter Filter) ([]*Beacon, error) {
	var (
		beacons []*Beacon
		seen    = make(map[string]*Beacon)
	)
	err := adapter.Scan(ctx, protocol.BulkServiceUUID, func(b *Beacon) bool {
		if !filter.match(b) {
			return false
		}
		key := strings.ToUpper(b.Address)
		if prev, ok := seen[key]; ok {
			if b.RSSI > prev.RSSI {
				prev.RSSI = b.RSSI
			}
			if prev.LocalName == "" {
				prev.LocalName = b.LocalName
			}
			return false
		}
		found := *b
		seen[key] = &found
		beacons = append(beacons, &found)
		log.Debug("Found %s (%s), RSSI %d", b.Address, b.LocalName, b.RSSI)
		return false
	})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return beacons, err
	}
	return beacons, nil
}

// Connection is a GATT session with one iron. Services and characteristics are discovered on
// first use and cached for the lifetime of the connection.
type Connection struct {
	beacon          *Beacon
	device          Device
	services        map[string]Service
	characteristics map[string]Characteristic
	lock            sync.Mutex
}

// Dial connects to the iron described by beacon.
func Dial(ctx context.Context, adapter Adapter, beacon *Beacon) (*Connection, error) {
	if !beacon.Connectable {
		return nil, ErrNotConnectable
	}

	log.Debug("Connecting to %s (%s)...", beacon.Address, beacon.LocalName)
	device, err := adapter.Connect(ctx, beacon)
	if err != nil {
		return nil, &protocol.ConnectionError{Op: "connect", Err: err}
	}
	log.Info("Connected to %s (%s)", beacon.Address, beacon.LocalName)

	return &Connection{
		beacon:          beacon,
		device:          device,
		services:        make(map[string]Service),
		characteristics: make(map[string]Characteristic),
	}, nil
}

func (c *Connection) Beacon() *Beacon {
	return c.beacon
}

func classify(op, target string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s", protocol.ErrNotSupported, target)
	}
	return &protocol.ConnectionError{Op: op, Err: err}
}

func (c *Connection) characteristic(ctx context.Context, service, uuid string) (Characteristic, error) {
	if c.device == nil {
		return nil, protocol.ErrNotConnected
	}
	if char, ok := c.characteristics[uuid]; ok {
		return char, nil
	}

	svc, ok := c.services[service]
	if !ok {
		var err error
		log.Debug("Discovering service %s...", service)
		if svc, err = c.device.Service(ctx, service); err != nil {
			return nil, classify("discover", "service "+service, err)
		}
		c.services[service] = svc
	}

	char, err := svc.Characteristic(ctx, uuid)
	if err != nil {
		return nil, classify("discover", "characteristic "+uuid, err)
	}
	c.characteristics[uuid] = char
	return char, nil
}

func (c *Connection) ReadCharacteristic(ctx context.Context, service, uuid string) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	char, err := c.characteristic(ctx, service, uuid)
	if err != nil {
		return nil, err
	}

	value, err := char.Read(ctx)
	if err != nil {
		return nil, classify("read", uuid, err)
	}
	if len(value) > connector.MaxPayloadLength {
		return nil, &protocol.DecodeError{Characteristic: uuid, Payload: value[:connector.MaxPayloadLength], Reason: "payload too long"}
	}
	log.Debug("RX %s: %02x", uuid, value)
	return value, nil
}

func (c *Connection) WriteCharacteristic(ctx context.Context, service, uuid string, value []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	char, err := c.characteristic(ctx, service, uuid)
	if err != nil {
		return err
	}

	log.Debug("TX %s: %02x", uuid, value)
	if err := char.Write(ctx, value); err != nil {
		return classify("write", uuid, err)
	}
	return nil
}

func (c *Connection) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.device == nil {
		return nil
	}
	device := c.device
	c.device = nil
	c.services = make(map[string]Service)
	c.characteristics = make(map[string]Characteristic)

	if err := device.Close(); err != nil {
		log.Warning("ble: failed to close device: %s", err)
		return err
	}
	log.Info("Disconnected from %s", c.beacon.Address)
	return nil
}

// Dialer opens a Connection to a fixed beacon each time Dial is called.
type Dialer struct {
	Adapter Adapter
	Beacon  *Beacon
}

func NewDialer(adapter Adapter, beacon *Beacon) *Dialer {
	return &Dialer{Adapter: adapter, Beacon: beacon}
}

func (d *Dialer) Dial(ctx context.Context) (connector.Connector, error) {
	conn, err := Dial(ctx, d.Adapter, d.Beacon)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
