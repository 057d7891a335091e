package goble

import (
	"context"
	"fmt"

	goble "github.com/go-ble/ble"

	"github.com/pinecil-go/pinecil/pkg/connector/ble"
)

type service struct {
	client  goble.Client
	service *goble.Service
}

func (s *service) Characteristic(ctx context.Context, uuid string) (ble.Characteristic, error) {
	target, err := goble.Parse(uuid)
	if err != nil {
		return nil, fmt.Errorf("ble: invalid characteristic UUID %q: %s", uuid, err)
	}

	characteristics, err := await(ctx, func() ([]*goble.Characteristic, error) {
		return s.client.DiscoverCharacteristics([]goble.UUID{target}, s.service)
	})
	if err != nil {
		return nil, fmt.Errorf("ble: failed to discover service characteristics: %w", err)
	}

	for _, char := range characteristics {
		if char.UUID.Equal(target) {
			return &characteristic{client: s.client, characteristic: char}, nil
		}
	}
	return nil, fmt.Errorf("ble: characteristic %s %w", uuid, ble.ErrNotFound)
}

type characteristic struct {
	client         goble.Client
	characteristic *goble.Characteristic
}

func (c *characteristic) Read(ctx context.Context) ([]byte, error) {
	return await(ctx, func() ([]byte, error) {
		return c.client.ReadCharacteristic(c.characteristic)
	})
}

func (c *characteristic) Write(ctx context.Context, value []byte) error {
	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, c.client.WriteCharacteristic(c.characteristic, value, false)
	})
	return err
}
