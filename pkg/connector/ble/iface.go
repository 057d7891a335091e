package ble

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by backends when a service or characteristic is absent from the peer's
// GATT table.
var ErrNotFound = errors.New("not found")

type Beacon struct {
	Address     string
	LocalName   string
	RSSI        int16
	Connectable bool
}

type Adapter interface {
	// Scan reports advertisements that include serviceUUID (or every advertisement, if
	// serviceUUID is empty) until fn returns true or ctx is done. It returns nil once fn accepts
	// a beacon and ctx.Err() if the context ends first.
	Scan(ctx context.Context, serviceUUID string, fn func(*Beacon) bool) error
	Connect(ctx context.Context, beacon *Beacon) (Device, error)
	Close() error
}

type Device interface {
	Service(ctx context.Context, uuid string) (Service, error)
	Close() error
}

type Service interface {
	Characteristic(ctx context.Context, uuid string) (Characteristic, error)
}

type Characteristic interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, value []byte) error
}
