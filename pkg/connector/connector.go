package connector

import (
	"context"
)

// MaxPayloadLength caps the byte-length of characteristic values that connectors must support.
const MaxPayloadLength = 512

// Connector reads and writes raw characteristic values on a connected iron.
//
// Characteristics are addressed by service and characteristic UUID strings in canonical
// lower-case form. Implementations should return an error matching protocol.ErrNotSupported
// when the peer does not expose the requested characteristic, and a *protocol.ConnectionError
// for transport failures.
type Connector interface {
	// ReadCharacteristic returns the current value of a characteristic.
	ReadCharacteristic(ctx context.Context, service, characteristic string) ([]byte, error)

	// WriteCharacteristic writes value to a characteristic.
	//
	// Depending on the error, the iron may have received and applied the write. If the returned
	// error implements protocol.Error, then the client may be able to determine if this is the
	// case by using the appropriate methods.
	WriteCharacteristic(ctx context.Context, service, characteristic string, value []byte) error

	// Close terminates the connection to the iron.
	//
	// Repeated calls to Close() must be idempotent, but the behavior of the interface is otherwise
	// undefined after calling this method.
	Close() error
}
