package goble

import (
	"strconv"
	"strings"
	"time"

	goble "github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/cmd"

	"github.com/pinecil-go/pinecil/pkg/connector/ble"
)

const bleTimeout = 20 * time.Second

// IronOS advertises roughly every 100ms while awake.
var scanParams = cmd.LESetScanParameters{
	LEScanType:           1,    // Active scanning
	LEScanInterval:       0x10, // 10ms
	LEScanWindow:         0x10, // 10ms
	OwnAddressType:       0,    // Static
	ScanningFilterPolicy: 0,    // Accept all
}

func IsAdapterError(err error) bool {
	return strings.Contains(err.Error(), "can't init hci") || strings.Contains(err.Error(), "operation not permitted")
}

func AdapterErrorHelpMessage(err error) string {
	return "Failed to open HCI device: \n\t" + err.Error() + "\n" +
		"Raw HCI access needs CAP_NET_ADMIN and CAP_NET_RAW (e.g. sudo setcap 'cap_net_raw,cap_net_admin+eip' <binary>),\n" +
		"and bluetoothd must not hold the adapter (sudo hciconfig hci0 down)."
}

func parseDeviceID(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "hci"))
	if err != nil || n < 0 {
		return 0, ble.ErrAdapterInvalidID
	}
	return n, nil
}

func newAdapter(id string) (goble.Device, error) {
	opts := []goble.Option{goble.OptListenerTimeout(bleTimeout), goble.OptDialerTimeout(bleTimeout), goble.OptScanParams(scanParams)}
	if id != "" {
		n, err := parseDeviceID(id)
		if err != nil {
			return nil, err
		}
		opts = append(opts, goble.OptDeviceID(n))
	}

	device, err := linux.NewDevice(opts...)
	if err != nil {
		return nil, err
	}
	return device, nil
}
