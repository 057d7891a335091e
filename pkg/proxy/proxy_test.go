package proxy_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/pinecil-go/pinecil/mocks"
	"github.com/pinecil-go/pinecil/pkg/protocol"
	"github.com/pinecil-go/pinecil/pkg/proxy"
	"github.com/pinecil-go/pinecil/pkg/update"
)

const resultTrue = `{"response":{"result":true,"reason":""}}`

var _ = Describe("Proxy", func() {
	var (
		ctrl     *gomock.Controller
		p        *proxy.Proxy
		iron     *mocks.ProxyIron
		releases *mocks.ProxyReleaseChecker
	)

	sendRequest := func(method, path string, token string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		p.ServeHTTP(rr, req)
		return rr
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		iron = mocks.NewProxyIron(ctrl)
		releases = mocks.NewProxyReleaseChecker(ctrl)
		p = proxy.New(iron, releases)
		DeferCleanup(func() {
			ctrl.Finish()
		})
	})

	Context("reads", func() {
		It("returns device info", func() {
			iron.EXPECT().GetDeviceInfo(gomock.Any()).Return(&protocol.DeviceInfo{
				Name:     "Pinecil-123ABCD",
				Address:  "AA:BB:CC:DD:EE:FF",
				Build:    "v2.22",
				DeviceSN: "0123456789abcdef",
				DeviceID: "123abcd",
			}, nil)
			rr := sendRequest(http.MethodGet, "/api/1/device", "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Header().Get("Content-Type")).To(Equal("application/json"))
			Expect(rr.Body.String()).To(MatchJSON(`{"response":{
				"name":"Pinecil-123ABCD","address":"AA:BB:CC:DD:EE:FF","build":"v2.22",
				"device_sn":"0123456789abcdef","device_id":"123abcd"}}`))
		})

		It("returns live data", func() {
			iron.EXPECT().GetLiveData(gomock.Any()).Return(&protocol.LiveData{LiveTemp: 318, SetpointTemp: 320, DCVoltage: 20.1}, nil)
			rr := sendRequest(http.MethodGet, "/api/1/live", "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var reply struct {
				Response map[string]interface{} `json:"response"`
			}
			Expect(json.Unmarshal(rr.Body.Bytes(), &reply)).To(Succeed())
			Expect(reply.Response).To(HaveKeyWithValue("live_temp", 318.0))
			Expect(reply.Response).To(HaveKeyWithValue("setpoint_temp", 320.0))
			Expect(reply.Response).To(HaveKeyWithValue("dc_voltage", 20.1))
		})

		It("returns the requested settings", func() {
			iron.EXPECT().GetSettings(gomock.Any(), protocol.SettingSetpointTemp, protocol.SettingTempUnit).Return(map[string]any{
				"setpoint_temp": 320,
				"temp_unit":     protocol.Celsius,
			}, nil)
			rr := sendRequest(http.MethodGet, "/api/1/settings?name=setpoint_temp&name=temp_unit", "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`{"response":{"setpoint_temp":320,"temp_unit":"CELSIUS"}}`))
		})

		It("rejects unknown settings without touching the iron", func() {
			rr := sendRequest(http.MethodGet, "/api/1/settings?name=warp_drive", "", nil)
			Expect(rr.Code).To(Equal(http.StatusNotFound))
		})

		It("reads a single characteristic", func() {
			iron.EXPECT().Read(gomock.Any(), protocol.LiveDCVoltage).Return(12.5, nil)
			rr := sendRequest(http.MethodGet, "/api/1/characteristics/live.dc_voltage", "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`{"response":{"name":"dc_voltage","value":12.5}}`))
		})

		It("maps decode errors to bad gateway", func() {
			iron.EXPECT().GetLiveData(gomock.Any()).Return(nil, &protocol.DecodeError{Characteristic: "live_data", Reason: "short payload"})
			rr := sendRequest(http.MethodGet, "/api/1/live", "", nil)
			Expect(rr.Code).To(Equal(http.StatusBadGateway))
		})

		It("maps connection failures to service unavailable", func() {
			iron.EXPECT().GetDeviceInfo(gomock.Any()).Return(nil, &protocol.ConnectionError{Op: "connect", Err: fmt.Errorf("le-connection-abort-by-local")})
			rr := sendRequest(http.MethodGet, "/api/1/device", "", nil)
			Expect(rr.Code).To(Equal(http.StatusServiceUnavailable))
		})

		It("times out slow reads", func() {
			p.Timeout = 50 * time.Millisecond
			iron.EXPECT().GetLiveData(gomock.Any()).DoAndReturn(func(ctx context.Context) (*protocol.LiveData, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})
			rr := sendRequest(http.MethodGet, "/api/1/live", "", nil)
			Expect(rr.Code).To(Equal(http.StatusGatewayTimeout))
		})
	})

	Context("writes", func() {
		It("parses string values", func() {
			iron.EXPECT().Write(gomock.Any(), protocol.SettingTempUnit, protocol.Fahrenheit).Return(nil)
			rr := sendRequest(http.MethodPost, "/api/1/settings/temp_unit", "", []byte(`{"value": "fahrenheit"}`))
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(resultTrue))
		})

		It("passes numbers through", func() {
			iron.EXPECT().Write(gomock.Any(), protocol.SettingSetpointTemp, int64(300)).Return(nil)
			rr := sendRequest(http.MethodPost, "/api/1/settings/setpoint_temp", "", []byte(`{"value": 300}`))
			Expect(rr.Code).To(Equal(http.StatusOK))
		})

		It("returns bad request for out-of-range values", func() {
			iron.EXPECT().Write(gomock.Any(), protocol.SettingSetpointTemp, int64(900)).
				Return(&protocol.RangeError{Characteristic: "setpoint_temp", Value: 900, Min: 10, Max: 850})
			rr := sendRequest(http.MethodPost, "/api/1/settings/setpoint_temp", "", []byte(`{"value": 900}`))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("out of range"))
		})

		It("returns bad request for malformed bodies", func() {
			rr := sendRequest(http.MethodPost, "/api/1/settings/setpoint_temp", "", []byte(`{"value": `))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("flags writes that may have been applied", func() {
			iron.EXPECT().Write(gomock.Any(), protocol.SettingSetpointTemp, int64(300)).
				Return(&protocol.ConnectionError{Op: "write", Err: fmt.Errorf("att timeout")})
			rr := sendRequest(http.MethodPost, "/api/1/settings/setpoint_temp", "", []byte(`{"value": 300}`))
			Expect(rr.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(rr.Body.String()).To(ContainSubstring(`"error_description":"the iron may have applied the change"`))
		})

		It("saves settings", func() {
			iron.EXPECT().SaveSettings(gomock.Any()).Return(nil)
			rr := sendRequest(http.MethodPost, "/api/1/settings/save", "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(resultTrue))
		})

		It("rejects reads on write routes", func() {
			rr := sendRequest(http.MethodGet, "/api/1/settings/save", "", nil)
			Expect(rr.Code).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Context("commands", func() {
		It("sets the temperature", func() {
			iron.EXPECT().Write(gomock.Any(), protocol.SettingSetpointTemp, 320.0).Return(nil)
			rr := sendRequest(http.MethodPost, "/api/1/command/set_temperature", "", []byte(`{"temperature": 320}`))
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(resultTrue))
		})

		It("returns not found for unknown commands", func() {
			rr := sendRequest(http.MethodPost, "/api/1/command/honk_horn", "", nil)
			Expect(rr.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("firmware", func() {
		It("returns the latest release", func() {
			releases.EXPECT().LatestRelease(gomock.Any()).Return(&update.Release{TagName: "v2.22", Name: "V2.22"}, nil)
			rr := sendRequest(http.MethodGet, "/api/1/firmware/latest", "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(ContainSubstring(`"tag_name":"v2.22"`))
		})

		It("maps update failures to bad gateway", func() {
			releases.EXPECT().LatestRelease(gomock.Any()).Return(nil, fmt.Errorf("%w: status 403", update.ErrUpdate))
			rr := sendRequest(http.MethodGet, "/api/1/firmware/latest", "", nil)
			Expect(rr.Code).To(Equal(http.StatusBadGateway))
		})

		It("returns not found when disabled", func() {
			p = proxy.New(iron, nil)
			rr := sendRequest(http.MethodGet, "/api/1/firmware/latest", "", nil)
			Expect(rr.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("access control", func() {
		var token string

		BeforeEach(func() {
			auth, err := proxy.NewAuthenticator([]byte("0123456789abcdef"))
			Expect(err).ToNot(HaveOccurred())
			token, err = auth.IssueToken("bench", time.Hour)
			Expect(err).ToNot(HaveOccurred())
			p.Auth = auth
		})

		It("rejects requests without a token", func() {
			rr := sendRequest(http.MethodGet, "/api/1/device", "", nil)
			Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects forged tokens", func() {
			other, err := proxy.NewAuthenticator([]byte("fedcba9876543210"))
			Expect(err).ToNot(HaveOccurred())
			forged, err := other.IssueToken("bench", time.Hour)
			Expect(err).ToNot(HaveOccurred())
			rr := sendRequest(http.MethodGet, "/api/1/device", forged, nil)
			Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		})

		It("accepts bearer and query tokens", func() {
			iron.EXPECT().GetDeviceInfo(gomock.Any()).Return(&protocol.DeviceInfo{}, nil).Times(2)
			rr := sendRequest(http.MethodGet, "/api/1/device", token, nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			rr = sendRequest(http.MethodGet, "/api/1/device?token="+token, "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
		})

		It("rate limits", func() {
			p.Limiter = rate.NewLimiter(0, 1)
			iron.EXPECT().GetDeviceInfo(gomock.Any()).Return(&protocol.DeviceInfo{}, nil)
			Expect(sendRequest(http.MethodGet, "/api/1/device", token, nil).Code).To(Equal(http.StatusOK))
			Expect(sendRequest(http.MethodGet, "/api/1/device", token, nil).Code).To(Equal(http.StatusTooManyRequests))
		})

		It("rate limits firmware lookups with the same budget", func() {
			p.Limiter = rate.NewLimiter(0, 1)
			iron.EXPECT().GetDeviceInfo(gomock.Any()).Return(&protocol.DeviceInfo{}, nil)
			Expect(sendRequest(http.MethodGet, "/api/1/device", token, nil).Code).To(Equal(http.StatusOK))
			rr := sendRequest(http.MethodGet, "/api/1/firmware/latest", token, nil)
			Expect(rr.Code).To(Equal(http.StatusTooManyRequests))
		})
	})

	Context("stream", func() {
		var server *httptest.Server

		dial := func(query string) *websocket.Conn {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/1/stream" + query
			ws, _, err := websocket.Dial(ctx, url, nil)
			Expect(err).ToNot(HaveOccurred())
			return ws
		}

		BeforeEach(func() {
			server = httptest.NewServer(p)
			DeferCleanup(server.Close)
		})

		It("rejects short intervals", func() {
			rr := sendRequest(http.MethodGet, "/api/1/stream?interval=10ms", "", nil)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("pushes live data frames", func() {
			iron.EXPECT().GetLiveData(gomock.Any()).Return(&protocol.LiveData{LiveTemp: 318}, nil).MinTimes(2)
			ws := dial("?interval=200ms")
			defer ws.CloseNow()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for i := 0; i < 2; i++ {
				var frame proxy.StreamFrame
				Expect(wsjson.Read(ctx, ws, &frame)).To(Succeed())
				Expect(frame.Error).To(BeEmpty())
				Expect(frame.Live).ToNot(BeNil())
				Expect(frame.Live.LiveTemp).To(Equal(318))
			}
			ws.Close(websocket.StatusNormalClosure, "")
		})

		It("reports errors in band", func() {
			iron.EXPECT().GetLiveData(gomock.Any()).Return(nil, protocol.ErrNotConnected).MinTimes(1)
			ws := dial("")
			defer ws.CloseNow()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			var frame proxy.StreamFrame
			Expect(wsjson.Read(ctx, ws, &frame)).To(Succeed())
			Expect(frame.Live).To(BeNil())
			Expect(frame.Error).To(Equal(protocol.ErrNotConnected.Error()))
		})
	})

	It("disconnects on close", func() {
		iron.EXPECT().Disconnect()
		p.Close()
	})
})
