package tinygo

import (
	"context"
	"fmt"
	"strings"

	"tinygo.org/x/bluetooth"

	"github.com/pinecil-go/pinecil/pkg/connector/ble"
)

type device struct {
	client   *bluetooth.Device
	services []bluetooth.DeviceService
}

func (c *device) Service(ctx context.Context, uuid string) (ble.Service, error) {
	if c.client == nil {
		return nil, fmt.Errorf("ble: device is closed")
	}

	// Filtered discovery fails outright if any UUID is missing, which hides the difference
	// between an absent service and a broken link. Enumerate everything once instead.
	if c.services == nil {
		services, err := await(ctx, func() ([]bluetooth.DeviceService, error) {
			return c.client.DiscoverServices(nil)
		})
		if err != nil {
			return nil, fmt.Errorf("ble: failed to enumerate device services: %w", err)
		}
		c.services = services
	}

	for i := range c.services {
		if strings.EqualFold(c.services[i].UUID().String(), uuid) {
			return &service{service: c.services[i]}, nil
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
	c.services = nil
	return client.Disconnect()
}
