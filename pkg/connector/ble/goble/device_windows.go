package goble

import (
	"errors"

	goble "github.com/go-ble/ble"
)

// IsAdapterError always reports false; the HCI backend never opens an adapter on Windows.
func IsAdapterError(_ error) bool {
	return false
}

// AdapterErrorHelpMessage returns err unchanged.
func AdapterErrorHelpMessage(err error) string {
	return err.Error()
}

// newAdapter fails: irons are reached through WinRT, which only the tinygo backend speaks.
func newAdapter(_ string) (goble.Device, error) {
	return nil, errors.New("the HCI backend is not supported on Windows; use the tinygo backend")
}
