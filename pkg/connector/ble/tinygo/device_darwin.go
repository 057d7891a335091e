package tinygo

import (
	"fmt"

	"tinygo.org/x/bluetooth"

	"github.com/pinecil-go/pinecil/pkg/connector/ble"
)

// IsAdapterError always reports false: CoreBluetooth surfaces adapter problems as ordinary
// connection failures to the iron.
func IsAdapterError(_ error) bool {
	return false
}

// AdapterErrorHelpMessage returns err unchanged; CoreBluetooth errors need no host setup hints.
func AdapterErrorHelpMessage(err error) string {
	return err.Error()
}

// newAdapter returns the CoreBluetooth adapter used to reach the iron. macOS exposes a single
// adapter, so any id is rejected.
func newAdapter(id string) (*bluetooth.Adapter, error) {
	if id != "" {
		return nil, ble.ErrAdapterInvalidID
	}
	return bluetooth.DefaultAdapter, nil
}

var (
	deviceCharacteristicWrite = bluetooth.DeviceCharacteristic.Write
)

// CoreBluetooth hides MAC addresses; peripherals are identified by a per-host UUID.
func parseAddress(address string) (bluetooth.Address, error) {
	uuid, err := bluetooth.ParseUUID(address)
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("ble: failed to parse peripheral UUID: %s", err)
	}

	return bluetooth.Address{
		UUID: uuid,
	}, nil
}
