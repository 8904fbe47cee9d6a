package controllers

import (
	"net/http"
	"pulsed/internal/providers"
	"pulsed/internal/stream"
	"pulsed/internal/structures"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// wsFrame is the websocket envelope for one pushed event.
type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WsController serves the websocket variant of the push stream. Same
// registry, same events; only the framing differs from SSE.
type WsController struct {
	logger   providers.Logger
	identity providers.IdentityProviderInterface
	registry *stream.Registry
	timeout  time.Duration
	upgrader websocket.Upgrader
}

func NewWsController(conf *structures.Config, logger providers.Logger, identity providers.IdentityProviderInterface, registry *stream.Registry) *WsController {
	return &WsController{
		logger:   logger,
		identity: identity,
		registry: registry,
		timeout:  conf.Stream.Timeout,
		upgrader: websocket.Upgrader{
			// Credentials gate the endpoint; origin is not part of the
			// trust model for non-browser agents.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

func (wc *WsController) Stream(w http.ResponseWriter, r *http.Request) {
	id, err := wc.identity.VerifyAccessToken(accessToken(r))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := wc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wc.logger.Warnf(providers.TypeStream, "WS upgrade failed: identity=%s err=%s", id, err)
		return
	}
	defer conn.Close()

	sess := wc.registry.Register(id, wc.timeout)
	wc.logger.Infof(providers.TypeStream, "WS connect: identity=%s remote=%s", id, r.RemoteAddr)

	// The read pump only watches for the client going away; inbound
	// frames carry no meaning on this endpoint.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wc.registry.Unregister(id, sess)
				return
			}
		}
	}()

	for {
		select {
		case ev := <-sess.Events():
			if err := conn.WriteMessage(websocket.TextMessage, encodeFrame(ev)); err != nil {
				wc.registry.Fail(sess)
				return
			}
		case <-sess.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, sess.Cause().String()))
			return
		}
	}
}

func encodeFrame(ev stream.Event) []byte {
	frame := wsFrame{Type: ev.Name}
	if json.Valid(ev.Data) {
		frame.Payload = ev.Data
	} else {
		quoted, _ := json.Marshal(string(ev.Data))
		frame.Payload = quoted
	}
	data, _ := json.Marshal(frame)
	return data
}
