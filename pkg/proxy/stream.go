package proxy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/protocol"
)

const (
	DefaultStreamInterval = time.Second
	MinStreamInterval     = 200 * time.Millisecond
)

// StreamFrame is one message of the live data stream. Exactly one of Live and Error is set.
type StreamFrame struct {
	Time  time.Time          `json:"time"`
	Live  *protocol.LiveData `json:"live,omitempty"`
	Error string             `json:"error,omitempty"`
}

func streamInterval(req *http.Request) (time.Duration, error) {
	text := req.URL.Query().Get("interval")
	if text == "" {
		return DefaultStreamInterval, nil
	}
	interval, err := time.ParseDuration(text)
	if err != nil {
		return 0, &HttpError{Code: http.StatusBadRequest, Message: fmt.Sprintf("invalid interval '%s'", text)}
	}
	if interval < MinStreamInterval {
		return 0, &HttpError{Code: http.StatusBadRequest, Message: fmt.Sprintf("interval must be at least %s", MinStreamInterval)}
	}
	return interval, nil
}

// handleStream upgrades to a websocket and pushes a StreamFrame every interval until the client
// goes away. Each sample takes the iron lock on its own, so REST requests interleave with the
// stream.
func (p *Proxy) handleStream(w http.ResponseWriter, req *http.Request) {
	interval, err := streamInterval(req)
	if err != nil {
		writeError(w, err)
		return
	}

	ws, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: p.StreamOrigins,
	})
	if err != nil {
		log.Warning("Websocket upgrade failed: %s", err)
		return
	}
	defer ws.CloseNow()

	// Clients never send frames; CloseRead handles control frames and cancels ctx on close.
	ctx := ws.CloseRead(req.Context())
	log.Info("Streaming live data every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		frame := p.sample(ctx)
		if err := wsjson.Write(ctx, ws, frame); err != nil {
			log.Debug("Stream closed: %s", err)
			return
		}
		select {
		case <-ctx.Done():
			ws.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}

func (p *Proxy) sample(ctx context.Context) *StreamFrame {
	frame := &StreamFrame{Time: time.Now().UTC()}
	err := p.withIron(ctx, func(ctx context.Context) (err error) {
		frame.Live, err = p.iron.GetLiveData(ctx)
		return
	})
	if err != nil {
		frame.Live = nil
		frame.Error = err.Error()
	}
	return frame
}
