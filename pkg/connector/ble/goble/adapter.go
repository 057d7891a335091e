package goble

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	goble "github.com/go-ble/ble"

	"github.com/pinecil-go/pinecil/pkg/connector/ble"
)

// NewAdapter opens the HCI device identified by id ("hci0", "1", or empty for the default).
func NewAdapter(id string) (ble.Adapter, error) {
	device, err := newAdapter(id)
	if err != nil {
		return nil, err
	}

	return &adapter{
		device: device,
	}, nil
}

type adapter struct {
	device goble.Device
}

func (s *adapter) Scan(ctx context.Context, serviceUUID string, fn func(*ble.Beacon) bool) error {
	var filter goble.UUID
	if serviceUUID != "" {
		uuid, err := goble.Parse(serviceUUID)
		if err != nil {
			return fmt.Errorf("ble: invalid service UUID %q: %s", serviceUUID, err)
		}
		filter = uuid
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The handler runs on the HCI event goroutine.
	var accepted atomic.Bool
	handler := func(a goble.Advertisement) {
		if accepted.Load() {
			return
		}
		if filter != nil && !goble.Contains(a.Services(), filter) {
			return
		}
		if fn(advertisementToBeacon(a)) {
			accepted.Store(true)
			cancel()
		}
	}

	err := s.device.Scan(scanCtx, false, handler)
	if accepted.Load() {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// Some HCI stacks report the cancellation of scanCtx as an error.
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ble: failed to scan: %s", err)
	}
	return nil
}

func (s *adapter) Connect(ctx context.Context, beacon *ble.Beacon) (ble.Device, error) {
	client, err := s.device.Dial(ctx, goble.NewAddr(beacon.Address))
	if err != nil {
		return nil, fmt.Errorf("ble: failed to connect to %s: %s", beacon.Address, err)
	}

	return &device{client: client}, nil
}

func (s *adapter) Close() error {
	if s.device == nil {
		return nil
	}

	device := s.device
	s.device = nil
	return device.Stop()
}

func advertisementToBeacon(a goble.Advertisement) *ble.Beacon {
	return &ble.Beacon{
		Address:     a.Addr().String(),
		LocalName:   a.LocalName(),
		RSSI:        int16(a.RSSI()),
		Connectable: a.Connectable(),
	}
}

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
