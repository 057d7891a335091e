package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/protocol"
	"github.com/pinecil-go/pinecil/pkg/update"
)

const (
	DefaultTimeout       = 10 * time.Second
	maxRequestBodyBytes  = 512
	proxyProtocolVersion = "pinecil-http-proxy/1.0.0"
)

// Iron is the subset of *iron.Iron used by the proxy.
type Iron interface {
	Read(ctx context.Context, c protocol.Characteristic) (any, error)
	Write(ctx context.Context, setting protocol.SettingChar, value any) error
	GetDeviceInfo(ctx context.Context) (*protocol.DeviceInfo, error)
	GetLiveData(ctx context.Context) (*protocol.LiveData, error)
	GetSettings(ctx context.Context, settings ...protocol.SettingChar) (map[string]any, error)
	SaveSettings(ctx context.Context) error
	Disconnect()
}

// ReleaseChecker looks up the newest firmware release.
type ReleaseChecker interface {
	LatestRelease(ctx context.Context) (*update.Release, error)
}

var (
	ErrUnauthorized = errors.New("missing or invalid access token")
	ErrRateLimited  = errors.New("too many requests")
	ErrNoReleases   = fmt.Errorf("%w: firmware checks are disabled", protocol.ErrNotSupported)
)

// HttpError carries an explicit status code for request validation failures.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	return e.Message
}

// Proxy exposes an HTTP API for a single iron.
type Proxy struct {
	Timeout time.Duration

	// Auth, if set, requires a bearer token on every request.
	Auth *Authenticator
	// Limiter, if set, caps the request rate across all clients. The iron is a single shared
	// radio link, so one bucket covers it.
	Limiter *rate.Limiter
	// StreamOrigins lists the host patterns allowed to open the websocket stream from a browser.
	StreamOrigins []string

	iron     Iron
	releases ReleaseChecker
	lock     chan struct{}
	mux      *http.ServeMux
}

// New creates an http proxy for iron. releases may be nil, in which case the firmware endpoint
// reports that it is not supported.
func New(iron Iron, releases ReleaseChecker) *Proxy {
	p := &Proxy{
		Timeout:  DefaultTimeout,
		iron:     iron,
		releases: releases,
		lock:     make(chan struct{}, 1),
		mux:      http.NewServeMux(),
	}
	p.mux.HandleFunc("GET /api/1/device", p.handleDevice)
	p.mux.HandleFunc("GET /api/1/live", p.handleLive)
	p.mux.HandleFunc("GET /api/1/settings", p.handleSettings)
	p.mux.HandleFunc("POST /api/1/settings/save", p.handleSave)
	p.mux.HandleFunc("POST /api/1/settings/{name}", p.handleWriteSetting)
	p.mux.HandleFunc("GET /api/1/characteristics/{name}", p.handleCharacteristic)
	p.mux.HandleFunc("POST /api/1/command/{command}", p.handleCommand)
	p.mux.HandleFunc("GET /api/1/stream", p.handleStream)
	p.mux.HandleFunc("GET /api/1/firmware/latest", p.handleFirmware)
	return p
}

// lockIron blocks until the caller owns the iron or ctx expires.
func (p *Proxy) lockIron(ctx context.Context) error {
	select {
	case p.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Proxy) unlockIron() {
	<-p.lock
}

// withIron runs fn while holding the iron, bounding both the wait and fn by p.Timeout.
func (p *Proxy) withIron(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	if err := p.lockIron(ctx); err != nil {
		return err
	}
	defer p.unlockIron()
	return fn(ctx)
}

// Close disconnects the iron once in-flight requests finish.
func (p *Proxy) Close() {
	p.lock <- struct{}{}
	defer p.unlockIron()
	p.iron.Disconnect()
}

// Response contains a server's response to a client request.
type Response struct {
	Response   interface{} `json:"response"`
	Error      string      `json:"error,omitempty"`
	ErrDetails string      `json:"error_description,omitempty"`
}

// statusCode maps library errors onto HTTP status codes.
func statusCode(err error) int {
	var httpErr *HttpError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, protocol.ErrOutOfRange), errors.Is(err, protocol.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, protocol.ErrNotSupported), errors.Is(err, ErrCommandNotImplemented):
		return http.StatusNotFound
	case errors.Is(err, protocol.ErrDecode), errors.Is(err, update.ErrUpdate):
		return http.StatusBadGateway
	case errors.Is(err, protocol.ErrDeviceNotFound), errors.Is(err, protocol.ErrConnectionFailed),
		errors.Is(err, protocol.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSONError(w http.ResponseWriter, code int, err error) {
	reply := Response{}
	if err == nil {
		reply.Error = http.StatusText(code)
	} else {
		reply.Error = err.Error()
		if protocol.MayHaveSucceeded(err) {
			reply.ErrDetails = "the iron may have applied the change"
		}
	}
	jsonBytes, err := json.Marshal(&reply)
	if err != nil {
		log.Error("Error serializing reply %+v: %s", &reply, err)
		code = http.StatusInternalServerError
		jsonBytes = []byte("{\"error\": \"internal server error\"}")
	}
	if code >= http.StatusInternalServerError {
		log.Error("Returning error %s: %s", http.StatusText(code), reply.Error)
	} else {
		log.Debug("Returning error %s: %s", http.StatusText(code), reply.Error)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	jsonBytes = append(jsonBytes, '\n')
	w.Write(jsonBytes)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusCode(err), err)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jsonBytes, err := json.Marshal(&Response{Response: v})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	jsonBytes = append(jsonBytes, '\n')
	w.Write(jsonBytes)
}

func writeResult(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, "{\"response\":{\"result\":true,\"reason\":\"\"}}")
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log.Info("Received %s request for %s", req.Method, req.URL.Path)
	w.Header().Set("Server", proxyProtocolVersion)

	if p.Limiter != nil && !p.Limiter.Allow() {
		writeError(w, ErrRateLimited)
		return
	}
	if p.Auth != nil {
		if _, err := p.Auth.Authorize(req); err != nil {
			writeError(w, err)
			return
		}
	}
	p.mux.ServeHTTP(w, req)
}

func readParameters(req *http.Request) (RequestParameters, error) {
	var params RequestParameters
	body, err := io.ReadAll(http.MaxBytesReader(nil, req.Body, maxRequestBodyBytes))
	if err != nil {
		return nil, &HttpError{Code: http.StatusBadRequest, Message: "could not read request body"}
	}
	if len(body) == 0 {
		return params, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&params); err != nil {
		return nil, &HttpError{Code: http.StatusBadRequest, Message: "error occurred while parsing request parameters"}
	}
	return params, nil
}

func (p *Proxy) handleDevice(w http.ResponseWriter, req *http.Request) {
	var info *protocol.DeviceInfo
	err := p.withIron(req.Context(), func(ctx context.Context) (err error) {
		info, err = p.iron.GetDeviceInfo(ctx)
		return
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, info)
}

func (p *Proxy) handleLive(w http.ResponseWriter, req *http.Request) {
	var data *protocol.LiveData
	err := p.withIron(req.Context(), func(ctx context.Context) (err error) {
		data, err = p.iron.GetLiveData(ctx)
		return
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, data)
}

func (p *Proxy) handleSettings(w http.ResponseWriter, req *http.Request) {
	var settings []protocol.SettingChar
	for _, name := range req.URL.Query()["name"] {
		setting, err := protocol.ParseSetting(name)
		if err != nil {
			writeError(w, err)
			return
		}
		settings = append(settings, setting)
	}

	var values map[string]any
	err := p.withIron(req.Context(), func(ctx context.Context) (err error) {
		values, err = p.iron.GetSettings(ctx, settings...)
		return
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, values)
}

type characteristicValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (p *Proxy) handleCharacteristic(w http.ResponseWriter, req *http.Request) {
	c, err := protocol.ParseCharacteristic(req.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	var value any
	err = p.withIron(req.Context(), func(ctx context.Context) (err error) {
		value, err = p.iron.Read(ctx, c)
		return
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, &characteristicValue{Name: c.String(), Value: value})
}

func (p *Proxy) handleWriteSetting(w http.ResponseWriter, req *http.Request) {
	setting, err := protocol.ParseSetting(req.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	params, err := readParameters(req)
	if err != nil {
		writeError(w, err)
		return
	}
	value, err := params.settingValue(setting)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Debug("Writing %v to %s", value, setting)
	err = p.withIron(req.Context(), func(ctx context.Context) error {
		return p.iron.Write(ctx, setting, value)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w)
}

func (p *Proxy) handleSave(w http.ResponseWriter, req *http.Request) {
	err := p.withIron(req.Context(), func(ctx context.Context) error {
		return p.iron.SaveSettings(ctx)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w)
}

func (p *Proxy) handleCommand(w http.ResponseWriter, req *http.Request) {
	command := req.PathValue("command")
	params, err := readParameters(req)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), p.Timeout)
	defer cancel()

	log.Debug("Executing %s", command)
	action, err := ExtractCommandAction(ctx, command, params)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := p.lockIron(ctx); err != nil {
		writeError(w, err)
		return
	}
	defer p.unlockIron()

	if err := action(p.iron); err != nil {
		writeError(w, err)
		return
	}
	writeResult(w)
}

func (p *Proxy) handleFirmware(w http.ResponseWriter, req *http.Request) {
	if p.releases == nil {
		writeError(w, ErrNoReleases)
		return
	}
	ctx, cancel := context.WithTimeout(req.Context(), p.Timeout)
	defer cancel()

	release, err := p.releases.LatestRelease(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, release)
}
