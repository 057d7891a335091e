package tinygo

import (
	"errors"
	"strings"
	"testing"
)

func TestIsAdapterError(t *testing.T) {
	tests := []struct {
		err      string
		expected bool
	}{
		{"dial unix /var/run/dbus/system_bus_socket: connect: no such file or directory", true},
		{"The name org.bluez was not provided by any .service files", true},
		{"ble: failed to connect to AA:BB:CC:DD:EE:FF: timeout", false},
		{"no such file or directory", false},
	}
	for _, test := range tests {
		if got := IsAdapterError(errors.New(test.err)); got != test.expected {
			t.Errorf("IsAdapterError(%q) = %v, expected %v", test.err, got, test.expected)
		}
	}
}

func TestAdapterErrorHelpMessageMentionsIron(t *testing.T) {
	msg := AdapterErrorHelpMessage(errors.New("dbus: no such file or directory"))
	if !strings.Contains(msg, "dbus: no such file or directory") || !strings.Contains(msg, "iron") {
		t.Errorf("Unexpected help message %q", msg)
	}
}
