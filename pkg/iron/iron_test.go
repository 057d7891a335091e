package iron_test

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/pinecil-go/pinecil/mocks"
	"github.com/pinecil-go/pinecil/pkg/connector/ble"
	"github.com/pinecil-go/pinecil/pkg/iron"
	"github.com/pinecil-go/pinecil/pkg/protocol"
)

const (
	name    = "Pinecil-0123ABCD"
	address = "C0:FF:EE:00:00:01"

	liveDataHex = "f1000000f0000000c90000002b0100000a000000030000003e00000045020000" +
		"c2000000b80100005e160000000000000100000019000000"
)

var _ = Describe("Iron", func() {
	var (
		ctrl    *gomock.Controller
		dialer  *mocks.IronDialer
		conn    *mocks.Connector
		pinecil *iron.Iron
		ctx     context.Context
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		dialer = mocks.NewIronDialer(ctrl)
		conn = mocks.NewConnector(ctrl)
		pinecil = iron.New(dialer, name, address)
		ctx = context.Background()
		DeferCleanup(func() {
			ctrl.Finish()
		})
	})

	read := func(c protocol.Characteristic, payload []byte) *gomock.Call {
		return conn.EXPECT().ReadCharacteristic(gomock.Any(), c.Service(), c.UUID()).Return(payload, nil)
	}

	Context("connection", func() {
		It("dials once", func() {
			dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil).Times(1)
			read(protocol.LiveTemp, []byte{0xf1, 0x00, 0x00, 0x00}).Times(2)

			Expect(pinecil.IsConnected()).To(BeFalse())
			for i := 0; i < 2; i++ {
				v, err := pinecil.Read(ctx, protocol.LiveTemp)
				Expect(err).ToNot(HaveOccurred())
				Expect(v).To(Equal(241))
			}
			Expect(pinecil.IsConnected()).To(BeTrue())
		})

		It("returns dial errors", func() {
			dialer.EXPECT().Dial(gomock.Any()).Return(nil, protocol.ErrDeviceNotFound)

			_, err := pinecil.Read(ctx, protocol.LiveTemp)
			Expect(err).To(MatchError(protocol.ErrDeviceNotFound))
			Expect(pinecil.IsConnected()).To(BeFalse())
		})

		It("replaces stale connections", func() {
			fresh := mocks.NewConnector(ctrl)
			gomock.InOrder(
				dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil),
				conn.EXPECT().ReadCharacteristic(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, &protocol.ConnectionError{Op: "read", Err: errors.New("link lost")}),
				conn.EXPECT().Close().Return(nil),
				dialer.EXPECT().Dial(gomock.Any()).Return(fresh, nil),
				fresh.EXPECT().ReadCharacteristic(gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte{0x01}, nil),
			)

			_, err := pinecil.Read(ctx, protocol.LiveOperatingMode)
			Expect(errors.Is(err, protocol.ErrConnectionFailed)).To(BeTrue())
			Expect(pinecil.IsConnected()).To(BeFalse())

			v, err := pinecil.Read(ctx, protocol.LiveOperatingMode)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(protocol.OperatingModeSoldering))
		})

		It("keeps the session after decode errors", func() {
			dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil)
			read(protocol.BulkBuild, []byte{0xff, 0xfe})

			_, err := pinecil.Read(ctx, protocol.BulkBuild)
			Expect(err).To(MatchError(protocol.ErrDecode))
			Expect(pinecil.IsConnected()).To(BeTrue())
		})

		It("disconnects", func() {
			dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil)
			conn.EXPECT().Close().Return(nil).Times(1)

			Expect(pinecil.Connect(ctx)).To(Succeed())
			Expect(pinecil.Connect(ctx)).To(Succeed())
			pinecil.Disconnect()
			pinecil.Disconnect()
			Expect(pinecil.IsConnected()).To(BeFalse())
		})
	})

	Context("reads", func() {
		BeforeEach(func() {
			dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil).AnyTimes()
		})

		It("rejects unknown characteristics without touching the transport", func() {
			_, err := pinecil.Read(ctx, protocol.LiveChar(99))
			Expect(err).To(MatchError(protocol.ErrNotSupported))
		})

		It("decodes live data", func() {
			payload, err := hex.DecodeString(liveDataHex)
			Expect(err).ToNot(HaveOccurred())
			read(protocol.BulkLiveData, payload)

			live, err := pinecil.GetLiveData(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(live.LiveTemp).To(Equal(241))
			Expect(live.PowerSource).To(Equal(protocol.PowerSourcePD))
			Expect(live.OperatingMode).To(Equal(protocol.OperatingModeSoldering))
			Expect(live.EstimatedPower).To(Equal(2.5))
		})

		It("caches device info", func() {
			read(protocol.BulkBuild, []byte("v2.22")).Times(1)
			read(protocol.BulkDeviceSN, []byte{0xef, 0xcd, 0xab, 0x89, 0x67, 0x45, 0x23, 0x01}).Times(1)
			read(protocol.BulkDeviceID, []byte{0xcd, 0xab, 0x23, 0x01}).Times(1)

			expected := &protocol.DeviceInfo{
				Name:     name,
				Address:  address,
				Build:    "v2.22",
				DeviceSN: "0123456789abcdef",
				DeviceID: "123abcd",
			}
			for i := 0; i < 2; i++ {
				info, err := pinecil.GetDeviceInfo(ctx)
				Expect(err).ToNot(HaveOccurred())
				Expect(info).To(Equal(expected))
			}
		})

		It("does not cache partial device info", func() {
			read(protocol.BulkBuild, []byte("v2.22")).Times(2)
			conn.EXPECT().ReadCharacteristic(gomock.Any(), gomock.Any(), protocol.BulkDeviceSN.UUID()).Return(nil, errors.New("busy"))
			read(protocol.BulkDeviceSN, []byte{0x01})
			read(protocol.BulkDeviceID, []byte{0x02})

			_, err := pinecil.GetDeviceInfo(ctx)
			Expect(err).To(HaveOccurred())
			Expect(pinecil.CachedDeviceInfo()).To(BeNil())
			info, err := pinecil.GetDeviceInfo(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(info.DeviceSN).To(Equal("0000000000000001"))
			Expect(pinecil.CachedDeviceInfo()).To(Equal(info))
		})

		It("reads a subset of settings in table order", func() {
			gomock.InOrder(
				read(protocol.SettingSetpointTemp, []byte{0x40, 0x01}),
				read(protocol.SettingUILanguage, []byte{0xd7, 0xa1}),
			)

			settings, err := pinecil.GetSettings(ctx, protocol.SettingUILanguage, protocol.SettingSetpointTemp)
			Expect(err).ToNot(HaveOccurred())
			Expect(settings).To(Equal(map[string]any{
				"setpoint_temp": 320,
				"ui_language":   protocol.LanguageEN,
			}))
		})

		It("reads every setting by default", func() {
			conn.EXPECT().ReadCharacteristic(gomock.Any(), protocol.SettingsServiceUUID, gomock.Any()).Return([]byte{0x01, 0x00}, nil).Times(len(protocol.Settings()))

			settings, err := pinecil.GetSettings(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(settings).To(HaveLen(len(protocol.Settings())))
			Expect(settings).To(HaveKeyWithValue("ble_enabled", true))
		})
	})

	Context("writes", func() {
		BeforeEach(func() {
			dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil).AnyTimes()
		})

		It("sets the temperature", func() {
			setpoint := protocol.SettingSetpointTemp
			conn.EXPECT().WriteCharacteristic(gomock.Any(), setpoint.Service(), setpoint.UUID(), []byte{0x2c, 0x01}).Return(nil)
			Expect(pinecil.SetTemperature(ctx, 300)).To(Succeed())
		})

		It("converts the setpoint to a Fahrenheit iron's unit", func() {
			setpoint := protocol.SettingSetpointTemp
			gomock.InOrder(
				read(protocol.SettingTempUnit, []byte{0x01, 0x00}),
				conn.EXPECT().WriteCharacteristic(gomock.Any(), setpoint.Service(), setpoint.UUID(), []byte{0x60, 0x02}).Return(nil),
			)
			Expect(pinecil.SetTemperatureIn(ctx, 320, protocol.Celsius)).To(Succeed())
		})

		It("writes Fahrenheit setpoints unchanged on a Fahrenheit iron", func() {
			setpoint := protocol.SettingSetpointTemp
			read(protocol.SettingTempUnit, []byte{0x01, 0x00})
			conn.EXPECT().WriteCharacteristic(gomock.Any(), setpoint.Service(), setpoint.UUID(), []byte{0x60, 0x02}).Return(nil)
			Expect(pinecil.SetTemperatureIn(ctx, 608, protocol.Fahrenheit)).To(Succeed())
		})

		It("converts Fahrenheit setpoints for a Celsius iron", func() {
			setpoint := protocol.SettingSetpointTemp
			read(protocol.SettingTempUnit, []byte{0x00, 0x00})
			conn.EXPECT().WriteCharacteristic(gomock.Any(), setpoint.Service(), setpoint.UUID(), []byte{0x40, 0x01}).Return(nil)
			Expect(pinecil.SetTemperatureIn(ctx, 608, protocol.Fahrenheit)).To(Succeed())
		})

		It("does not write when the unit cannot be read", func() {
			conn.EXPECT().ReadCharacteristic(gomock.Any(), gomock.Any(), protocol.SettingTempUnit.UUID()).Return(nil, &protocol.ConnectionError{Op: "read", Err: errors.New("link lost")})
			err := pinecil.SetTemperatureIn(ctx, 320, protocol.Celsius)
			Expect(err).To(MatchError(protocol.ErrConnectionFailed))
		})

		It("saves and resets settings", func() {
			conn.EXPECT().WriteCharacteristic(gomock.Any(), gomock.Any(), protocol.SettingsSave.UUID(), []byte{0x01, 0x00}).Return(nil)
			conn.EXPECT().WriteCharacteristic(gomock.Any(), gomock.Any(), protocol.SettingsReset.UUID(), []byte{0x01, 0x00}).Return(nil)
			Expect(pinecil.SaveSettings(ctx)).To(Succeed())
			Expect(pinecil.ResetSettings(ctx)).To(Succeed())
		})

		It("rejects out of range values without writing", func() {
			err := pinecil.SetTemperature(ctx, 900)
			var rangeErr *protocol.RangeError
			Expect(errors.As(err, &rangeErr)).To(BeTrue())
			Expect(rangeErr.Characteristic).To(Equal("setpoint_temp"))
		})

		It("rejects invalid values without writing", func() {
			err := pinecil.Write(ctx, protocol.SettingTempUnit, "kelvin")
			Expect(err).To(MatchError(protocol.ErrInvalidValue))
		})

		It("marks the session stale after a failed write", func() {
			conn.EXPECT().WriteCharacteristic(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(&protocol.ConnectionError{Op: "write", Err: errors.New("link lost")})

			err := pinecil.Write(ctx, protocol.SettingBLEEnabled, true)
			Expect(protocol.MayHaveSucceeded(err)).To(BeTrue())
			Expect(pinecil.IsConnected()).To(BeFalse())
		})
	})

	Context("discovery", func() {
		It("returns not found when the timeout expires", func() {
			adapter := mocks.NewBLEAdapter(ctrl)
			adapter.EXPECT().Scan(gomock.Any(), protocol.BulkServiceUUID, gomock.Any()).DoAndReturn(
				func(ctx context.Context, _ string, _ func(*ble.Beacon) bool) error {
					<-ctx.Done()
					return ctx.Err()
				})

			start := time.Now()
			_, err := iron.Discover(ctx, adapter, 50*time.Millisecond)
			Expect(err).To(MatchError(protocol.ErrDeviceNotFound))
			Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		})

		It("builds an iron from a beacon", func() {
			adapter := mocks.NewBLEAdapter(ctrl)
			beacon := &ble.Beacon{Address: address, LocalName: name, Connectable: true}
			adapter.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, _ string, fn func(*ble.Beacon) bool) error {
					Expect(fn(beacon)).To(BeTrue())
					return nil
				})

			found, err := iron.Discover(ctx, adapter, time.Second)
			Expect(err).ToNot(HaveOccurred())
			p := iron.NewFromBeacon(adapter, found)
			Expect(p.Name()).To(Equal(name))
			Expect(p.Address()).To(Equal(address))
		})
	})
})
