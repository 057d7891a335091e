package tinygo

import (
	"fmt"
	"strings"

	"tinygo.org/x/bluetooth"
)

// IsAdapterError reports whether err means BlueZ could not be reached, as opposed to a failure
// talking to the iron itself.
func IsAdapterError(err error) bool {
	// D-Bus not found
	if strings.Contains(err.Error(), "dbus") && strings.HasSuffix(err.Error(), "no such file or directory") {
		return true
	}
	// D-Bus is running but org.bluez is not found
	if strings.Contains(err.Error(), "The name org.bluez was not provided by any .service files") {
		return true
	}
	return false
}

// AdapterErrorHelpMessage explains how to get a Linux host's BlueZ stack ready to reach an iron.
func AdapterErrorHelpMessage(err error) string {
	return "Failed to initialize BLE adapter: \n\t" + err.Error() + "\n" +
		"Make sure bluez and dbus are running and the iron is not paired to another host.\n" +
		"Inside a container, mount the host's D-Bus socket (e.g. -v /var/run/dbus:/var/run/dbus)."
}

// newAdapter accepts a BlueZ adapter name such as "hci1".
func newAdapter(id string) (*bluetooth.Adapter, error) {
	if id != "" {
		return bluetooth.NewAdapter(id), nil
	}
	return bluetooth.DefaultAdapter, nil
}

var (
	deviceCharacteristicWrite = bluetooth.DeviceCharacteristic.WriteWithoutResponse
)

func parseAddress(address string) (bluetooth.Address, error) {
	mac, err := bluetooth.ParseMAC(address)
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("ble: failed to parse MAC address: %s", err)
	}

	return bluetooth.Address{
		MACAddress: bluetooth.MACAddress{
			MAC: mac,
		},
	}, nil
}
