package tinygo

import (
	"context"
	"fmt"
	"strings"

	"tinygo.org/x/bluetooth"

	"github.com/pinecil-go/pinecil/pkg/connector"
	"github.com/pinecil-go/pinecil/pkg/connector/ble"
)

type service struct {
	service         bluetooth.DeviceService
	characteristics []bluetooth.DeviceCharacteristic
}

func (s *service) Characteristic(ctx context.Context, uuid string) (ble.Characteristic, error) {
	if s.characteristics == nil {
		characteristics, err := await(ctx, func() ([]bluetooth.DeviceCharacteristic, error) {
			return s.service.DiscoverCharacteristics(nil)
		})
		if err != nil {
			return nil, fmt.Errorf("ble: failed to discover service characteristics: %w", err)
		}
		s.characteristics = characteristics
	}

	for i := range s.characteristics {
		if strings.EqualFold(s.characteristics[i].UUID().String(), uuid) {
			return &characteristic{characteristic: s.characteristics[i]}, nil
		}
	}
	return nil, fmt.Errorf("ble: characteristic %s %w", uuid, ble.ErrNotFound)
}

type characteristic struct {
	characteristic bluetooth.DeviceCharacteristic
}

func (c *characteristic) Read(ctx context.Context) ([]byte, error) {
	return await(ctx, func() ([]byte, error) {
		buf := make([]byte, connector.MaxPayloadLength)
		n, err := c.characteristic.Read(buf)
		if err != nil {
			return nil, err
		}
		return buf[:min(n, len(buf))], nil
	})
}

func (c *characteristic) Write(ctx context.Context, value []byte) error {
	_, err := await(ctx, func() (int, error) {
		return deviceCharacteristicWrite(c.characteristic, value)
	})
	return err
}
