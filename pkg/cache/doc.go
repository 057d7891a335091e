// Package cache remembers irons a client has talked to before.
//
// Each entry holds the identity reported by
// [github.com/pinecil-go/pinecil/pkg/iron.Iron.GetDeviceInfo], keyed by BLE address. Clients use
// it to connect to a known address without scanning while still knowing the iron's name, and to
// check for firmware updates without powering the iron on.
//
// Entries may be outdated; the firmware build in particular changes whenever the iron is flashed.
// A [DeviceCache] is safe for concurrent use.
package cache
