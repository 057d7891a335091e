package goble

import (
	"context"
	"errors"
	"fmt"

	goble "github.com/go-ble/ble"

	"github.com/pinecil-go/pinecil/pkg/connector/ble"
)

type device struct {
	client goble.Client
}

func (c *device) Service(ctx context.Context, uuid string) (ble.Service, error) {
	if c.client == nil {
		return nil, fmt.Errorf("ble: device is closed")
	}
	target, err := goble.Parse(uuid)
	if err != nil {
		return nil, fmt.Errorf("ble: invalid service UUID %q: %s", uuid, err)
	}

	services, err := await(ctx, func() ([]*goble.Service, error) {
		return c.client.DiscoverServices([]goble.UUID{target})
	})
	if err != nil {
		return nil, fmt.Errorf("ble: failed to enumerate device services: %w", err)
	}
	for _, svc := range services {
		if svc.UUID.Equal(target) {
			return &service{client: c.client, service: svc}, nil
		}
	}
	return nil, fmt.Errorf("ble: service %s %w", uuid, ble.ErrNotFound)
}

func (c *device) Close() error {
	if c.client == nil {
		return nil
	}
	client := c.client
	c.client = nil

	err1 := client.ClearSubscriptions()
	err2 := client.CancelConnection()

	return errors.Join(err1, err2)
}
