package tinygo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/connector/ble"
)

// NewAdapter enables the host adapter identified by id. An empty id selects the default adapter.
func NewAdapter(id string) (ble.Adapter, error) {
	device, err := newAdapter(id)
	if err != nil {
		return nil, err
	}
	if err = device.Enable(); err != nil {
		return nil, fmt.Errorf("ble: failed to enable device: %s", err)
	}

	return &adapter{
		device: device,
	}, nil
}

type adapter struct {
	device *bluetooth.Adapter
}

func (s *adapter) Scan(ctx context.Context, serviceUUID string, fn func(*ble.Beacon) bool) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var filter *bluetooth.UUID
	if serviceUUID != "" {
		uuid, err := bluetooth.ParseUUID(serviceUUID)
		if err != nil {
			return fmt.Errorf("ble: invalid service UUID %q: %s", serviceUUID, err)
		}
		filter = &uuid
	}

	stopScan := func() {
		err := s.device.StopScan()
		if err != nil {
			if strings.Contains(err.Error(), "no scan in progress") {
				return
			}
			log.Warning("ble: failed to stop scan: %+v", err)
		}
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-scanCtx.Done()
		stopScan()
	}()

	accepted := false
	err := s.device.Scan(func(_ *bluetooth.Adapter, a bluetooth.ScanResult) {
		if accepted || scanCtx.Err() != nil {
			stopScan()
			return
		}
		if filter != nil && !a.HasServiceUUID(*filter) {
			return
		}
		if fn(advertisementToBeacon(a)) {
			accepted = true
			stopScan()
		}
	})

	if err != nil {
		return fmt.Errorf("ble: failed to scan: %s", err)
	}
	if accepted {
		return nil
	}
	return ctx.Err()
}

func (s *adapter) Connect(ctx context.Context, beacon *ble.Beacon) (ble.Device, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	params := bluetooth.ConnectionParams{}
	if deadline, ok := ctx.Deadline(); ok {
		params.ConnectionTimeout = bluetooth.NewDuration(time.Until(deadline))
	}

	addr, err := parseAddress(beacon.Address)
	if err != nil {
		return nil, err
	}

	deviceCh := make(chan bluetooth.Device, 1)
	errorCh := make(chan error, 1)
	go func() {
		client, err := s.device.Connect(addr, params)
		if err != nil {
			errorCh <- err
			return
		}
		if ctx.Err() != nil {
			// The caller has already given up.
			_ = client.Disconnect()
			return
		}
		deviceCh <- client
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errorCh:
		return nil, fmt.Errorf("ble: failed to connect to %s: %s", beacon.Address, err)
	case client := <-deviceCh:
		return &device{client: &client}, nil
	}
}

func (s *adapter) Close() error {
	s.device = nil
	return nil
}

func advertisementToBeacon(result bluetooth.ScanResult) *ble.Beacon {
	return &ble.Beacon{
		Address:     result.Address.String(),
		LocalName:   result.LocalName(),
		RSSI:        result.RSSI,
		Connectable: true,
	}
}

// await runs fn on its own goroutine so that callers can abandon blocking D-Bus / WinRT calls when
// ctx ends. The goroutine itself is left to finish in the background.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.value, r.err
	}
}
