package goble

import (
	"context"
	"errors"
	"sync"
	"testing"

	goble "github.com/go-ble/ble"

	"github.com/pinecil-go/pinecil/pkg/connector/ble"
	"github.com/pinecil-go/pinecil/pkg/protocol"
)

type fakeAdvertisement struct {
	goble.Advertisement
	name     string
	addr     string
	services []goble.UUID
}

func (a fakeAdvertisement) LocalName() string      { return a.name }
func (a fakeAdvertisement) Services() []goble.UUID { return a.services }
func (a fakeAdvertisement) RSSI() int              { return -60 }
func (a fakeAdvertisement) Connectable() bool      { return true }
func (a fakeAdvertisement) Addr() goble.Addr       { return goble.NewAddr(a.addr) }

// fakeDevice delivers advertisements from its own goroutines, the way an HCI event loop does.
type fakeDevice struct {
	goble.Device
	advertisements []goble.Advertisement
	err            error
}

func (d *fakeDevice) Scan(ctx context.Context, _ bool, h goble.AdvHandler) error {
	var wg sync.WaitGroup
	for _, a := range d.advertisements {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h(a)
		}()
	}
	wg.Wait()
	if d.err != nil {
		return d.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestScanStopsAtAcceptedBeacon(t *testing.T) {
	service := goble.MustParse(protocol.BulkServiceUUID)
	var advertisements []goble.Advertisement
	for i := 0; i < 8; i++ {
		advertisements = append(advertisements, fakeAdvertisement{
			name:     "Pinecil-123ABCD",
			addr:     "aa:bb:cc:dd:ee:ff",
			services: []goble.UUID{service},
		})
	}
	advertisements = append(advertisements, fakeAdvertisement{name: "Speaker", addr: "11:22:33:44:55:66"})
	s := &adapter{device: &fakeDevice{advertisements: advertisements}}

	var mu sync.Mutex
	var found []*ble.Beacon
	err := s.Scan(context.Background(), protocol.BulkServiceUUID, func(b *ble.Beacon) bool {
		mu.Lock()
		defer mu.Unlock()
		found = append(found, b)
		return true
	})
	if err != nil {
		t.Fatalf("Scan failed: %s", err)
	}
	if len(found) == 0 {
		t.Fatal("No beacon reported")
	}
	for _, b := range found {
		if b.LocalName != "Pinecil-123ABCD" || !b.Connectable || b.RSSI != -60 {
			t.Errorf("Unexpected beacon %+v", b)
		}
	}
}

func TestScanReportsDeviceErrors(t *testing.T) {
	s := &adapter{device: &fakeDevice{err: errors.New("hci: command disallowed")}}
	err := s.Scan(context.Background(), "", func(*ble.Beacon) bool { return true })
	if err == nil {
		t.Fatal("Expected an error")
	}
}

func TestScanHonoursCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &adapter{device: &fakeDevice{}}
	err := s.Scan(ctx, "", func(*ble.Beacon) bool { return false })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestScanRejectsInvalidServiceUUID(t *testing.T) {
	s := &adapter{device: &fakeDevice{}}
	if err := s.Scan(context.Background(), "not-a-uuid", nil); err == nil {
		t.Error("Expected an error for an invalid UUID")
	}
}
