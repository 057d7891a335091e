package ble_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/pinecil-go/pinecil/mocks"
	"github.com/pinecil-go/pinecil/pkg/connector/ble"
	"github.com/pinecil-go/pinecil/pkg/protocol"
)

var _ = Describe("BLE", func() {
	var (
		ctrl    *gomock.Controller
		adapter *mocks.BLEAdapter
		ctx     context.Context
		pinecil *ble.Beacon
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		adapter = mocks.NewBLEAdapter(ctrl)
		ctx = context.Background()
		pinecil = &ble.Beacon{Address: "C0:FF:EE:00:00:01", LocalName: "Pinecil-0123ABCD", RSSI: -60, Connectable: true}
		DeferCleanup(func() {
			ctrl.Finish()
		})
	})

	advertise := func(beacons ...*ble.Beacon) func(context.Context, string, func(*ble.Beacon) bool) error {
		return func(ctx context.Context, uuid string, fn func(*ble.Beacon) bool) error {
			Expect(uuid).To(Equal(protocol.BulkServiceUUID))
			for _, b := range beacons {
				if fn(b) {
					return nil
				}
			}
			return context.DeadlineExceeded
		}
	}

	Context("ScanBeacons", func() {
		It("deduplicates advertisements and keeps the strongest signal", func() {
			other := &ble.Beacon{Address: "C0:FF:EE:00:00:02", LocalName: "Pinecil-FFFFFFFF", RSSI: -80, Connectable: true}
			closer := &ble.Beacon{Address: "c0:ff:ee:00:00:01", LocalName: "Pinecil-0123ABCD", RSSI: -40, Connectable: true}
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(advertise(pinecil, other, closer))

			beacons, err := ble.ScanBeacons(ctx, adapter, ble.Filter{})
			Expect(err).ToNot(HaveOccurred())
			Expect(beacons).To(HaveLen(2))
			Expect(beacons[0].Address).To(Equal(pinecil.Address))
			Expect(beacons[0].RSSI).To(Equal(int16(-40)))
			Expect(beacons[1].LocalName).To(Equal("Pinecil-FFFFFFFF"))
			Expect(pinecil.RSSI).To(Equal(int16(-60)))
		})

		It("applies the filter", func() {
			other := &ble.Beacon{Address: "C0:FF:EE:00:00:02", LocalName: "Pinecil-FFFFFFFF", Connectable: true}
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(advertise(pinecil, other))

			beacons, err := ble.ScanBeacons(ctx, adapter, ble.Filter{LocalName: "Pinecil-FFFFFFFF"})
			Expect(err).ToNot(HaveOccurred())
			Expect(beacons).To(ConsistOf(other))
		})

		It("reports adapter failures", func() {
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("adapter powered off"))

			beacons, err := ble.ScanBeacons(ctx, adapter, ble.Filter{})
			Expect(err).To(MatchError("adapter powered off"))
			Expect(beacons).To(BeEmpty())
		})
	})

	Context("ScanBeacon", func() {
		It("returns the first matching beacon", func() {
			other := &ble.Beacon{Address: "C0:FF:EE:00:00:02", LocalName: "Pinecil-FFFFFFFF", Connectable: true}
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(advertise(other, pinecil))

			beacon, err := ble.ScanBeacon(ctx, adapter, ble.Filter{Address: "c0:ff:ee:00:00:01"})
			Expect(err).ToNot(HaveOccurred())
			Expect(beacon).To(Equal(pinecil))
		})

		It("accepts any iron without a filter", func() {
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(advertise(pinecil))

			beacon, err := ble.ScanBeacon(ctx, adapter, ble.Filter{})
			Expect(err).ToNot(HaveOccurred())
			Expect(beacon.LocalName).To(Equal("Pinecil-0123ABCD"))
		})

		It("returns not found when the deadline passes", func() {
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(advertise(pinecil))

			_, err := ble.ScanBeacon(ctx, adapter, ble.Filter{LocalName: "Pinecil-00000000"})
			Expect(err).To(MatchError(protocol.ErrDeviceNotFound))
			Expect(protocol.Temporary(err)).To(BeTrue())
		})

		It("returns cancellation as is", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).Return(context.Canceled)

			_, err := ble.ScanBeacon(cancelled, adapter, ble.Filter{})
			Expect(err).To(MatchError(context.Canceled))
		})

		It("returns adapter errors", func() {
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("adapter powered off"))

			_, err := ble.ScanBeacon(ctx, adapter, ble.Filter{})
			Expect(err).To(MatchError("adapter powered off"))
		})
	})

	Context("Dial", func() {
		It("refuses beacons that are not connectable", func() {
			pinecil.Connectable = false
			_, err := ble.Dial(ctx, adapter, pinecil)
			Expect(err).To(MatchError(ble.ErrNotConnectable))
		})

		It("wraps connection failures", func() {
			adapter.EXPECT().Connect(gomock.Any(), pinecil).Return(nil, errors.New("le-connection-abort-by-local"))

			_, err := ble.Dial(ctx, adapter, pinecil)
			Expect(errors.Is(err, protocol.ErrConnectionFailed)).To(BeTrue())
			Expect(protocol.ShouldRetry(err)).To(BeTrue())
		})

		It("returns a connector from a Dialer", func() {
			device := mocks.NewBLEDevice(ctrl)
			adapter.EXPECT().Connect(gomock.Any(), pinecil).Return(device, nil)
			device.EXPECT().Close().Return(nil)

			conn, err := ble.NewDialer(adapter, pinecil).Dial(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(conn.Close()).To(Succeed())
		})

		It("does not return a typed nil from a Dialer", func() {
			adapter.EXPECT().Connect(gomock.Any(), pinecil).Return(nil, errors.New("timeout"))

			conn, err := ble.NewDialer(adapter, pinecil).Dial(ctx)
			Expect(err).To(HaveOccurred())
			Expect(conn).To(BeNil())
		})
	})

	Context("Connection", func() {
		var (
			device  *mocks.BLEDevice
			service *mocks.BLEService
			char    *mocks.BLECharacteristic
			conn    *ble.Connection
		)

		setpoint := protocol.SettingSetpointTemp

		BeforeEach(func() {
			var err error
			device = mocks.NewBLEDevice(ctrl)
			service = mocks.NewBLEService(ctrl)
			char = mocks.NewBLECharacteristic(ctrl)
			adapter.EXPECT().Connect(gomock.Any(), pinecil).Return(device, nil)
			conn, err = ble.Dial(ctx, adapter, pinecil)
			Expect(err).ToNot(HaveOccurred())
			Expect(conn.Beacon()).To(Equal(pinecil))
		})

		It("discovers characteristics once", func() {
			device.EXPECT().Service(gomock.Any(), setpoint.Service()).Return(service, nil).Times(1)
			service.EXPECT().Characteristic(gomock.Any(), setpoint.UUID()).Return(char, nil).Times(1)
			char.EXPECT().Read(gomock.Any()).Return([]byte{0x40, 0x01}, nil).Times(2)
			char.EXPECT().Write(gomock.Any(), []byte{0x2c, 0x01}).Return(nil)

			for i := 0; i < 2; i++ {
				value, err := conn.ReadCharacteristic(ctx, setpoint.Service(), setpoint.UUID())
				Expect(err).ToNot(HaveOccurred())
				Expect(value).To(Equal([]byte{0x40, 0x01}))
			}
			Expect(conn.WriteCharacteristic(ctx, setpoint.Service(), setpoint.UUID(), []byte{0x2c, 0x01})).To(Succeed())
		})

		It("reports missing services as not supported", func() {
			device.EXPECT().Service(gomock.Any(), setpoint.Service()).Return(nil, fmt.Errorf("ble: service %s %w", setpoint.Service(), ble.ErrNotFound))

			_, err := conn.ReadCharacteristic(ctx, setpoint.Service(), setpoint.UUID())
			Expect(err).To(MatchError(protocol.ErrNotSupported))
			Expect(errors.Is(err, protocol.ErrConnectionFailed)).To(BeFalse())
		})

		It("reports missing characteristics as not supported", func() {
			device.EXPECT().Service(gomock.Any(), setpoint.Service()).Return(service, nil)
			service.EXPECT().Characteristic(gomock.Any(), setpoint.UUID()).Return(nil, fmt.Errorf("ble: characteristic %s %w", setpoint.UUID(), ble.ErrNotFound))

			err := conn.WriteCharacteristic(ctx, setpoint.Service(), setpoint.UUID(), []byte{0x2c, 0x01})
			Expect(err).To(MatchError(protocol.ErrNotSupported))
		})

		It("classifies read failures as temporary", func() {
			device.EXPECT().Service(gomock.Any(), gomock.Any()).Return(service, nil)
			service.EXPECT().Characteristic(gomock.Any(), gomock.Any()).Return(char, nil)
			char.EXPECT().Read(gomock.Any()).Return(nil, errors.New("ATT error 0x0e"))

			_, err := conn.ReadCharacteristic(ctx, setpoint.Service(), setpoint.UUID())
			var connErr *protocol.ConnectionError
			Expect(errors.As(err, &connErr)).To(BeTrue())
			Expect(connErr.Op).To(Equal("read"))
			Expect(protocol.MayHaveSucceeded(err)).To(BeFalse())
			Expect(protocol.Temporary(err)).To(BeTrue())
		})

		It("flags write failures as possibly applied", func() {
			device.EXPECT().Service(gomock.Any(), gomock.Any()).Return(service, nil)
			service.EXPECT().Characteristic(gomock.Any(), gomock.Any()).Return(char, nil)
			char.EXPECT().Write(gomock.Any(), gomock.Any()).Return(errors.New("disconnected"))

			err := conn.WriteCharacteristic(ctx, setpoint.Service(), setpoint.UUID(), []byte{0x2c, 0x01})
			Expect(protocol.MayHaveSucceeded(err)).To(BeTrue())
		})

		It("closes the device once", func() {
			device.EXPECT().Close().Return(nil).Times(1)

			Expect(conn.Close()).To(Succeed())
			Expect(conn.Close()).To(Succeed())

			_, err := conn.ReadCharacteristic(ctx, setpoint.Service(), setpoint.UUID())
			Expect(err).To(MatchError(protocol.ErrNotConnected))
		})
	})
})
