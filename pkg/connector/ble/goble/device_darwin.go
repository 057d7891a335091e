package goble

import (
	goble "github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"

	"github.com/pinecil-go/pinecil/internal/log"
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

// newAdapter opens the CoreBluetooth central used to reach the iron. A specific adapter id
// cannot be chosen on macOS.
func newAdapter(id string) (goble.Device, error) {
	if id != "" {
		log.Warning("Darwin does not support specifying a Bluetooth adapter ID")
		return nil, ble.ErrAdapterInvalidID
	}
	device, err := darwin.NewDevice()
	if err != nil {
		return nil, err
	}
	return device, nil
}
