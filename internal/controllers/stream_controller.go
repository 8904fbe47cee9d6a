package controllers

import (
	"fmt"
	"io"
	"net/http"
	"pulsed/internal/providers"
	"pulsed/internal/stream"
	"pulsed/internal/structures"
	"time"
)

// StreamController serves the SSE push stream. The handler goroutine
// is the session's transport: it drains the delivery sink and maps
// transport outcomes onto the session's terminal causes.
type StreamController struct {
	logger   providers.Logger
	identity providers.IdentityProviderInterface
	registry *stream.Registry
	timeout  time.Duration
}

func NewStreamController(conf *structures.Config, logger providers.Logger, identity providers.IdentityProviderInterface, registry *stream.Registry) *StreamController {
	return &StreamController{
		logger:   logger,
		identity: identity,
		registry: registry,
		timeout:  conf.Stream.Timeout,
	}
}

func (sc *StreamController) Stream(w http.ResponseWriter, r *http.Request) {
	id, err := sc.identity.VerifyAccessToken(accessToken(r))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if err := rc.Flush(); err != nil {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sess := sc.registry.Register(id, sc.timeout)
	sc.logger.Infof(providers.TypeStream, "SSE connect: identity=%s remote=%s", id, r.RemoteAddr)

	for {
		select {
		case ev := <-sess.Events():
			if err := writeSSE(w, ev); err != nil {
				sc.registry.Fail(sess)
				return
			}
			_ = rc.Flush()
		case <-sess.Done():
			// Timed out or torn down elsewhere. Flush whatever was
			// delivered before the terminal transition, then end the
			// stream with no error payload.
			sc.drain(w, rc, sess)
			return
		case <-r.Context().Done():
			sc.registry.Unregister(id, sess)
			return
		}
	}
}

func (sc *StreamController) drain(w io.Writer, rc *http.ResponseController, sess *stream.Session) {
	for {
		select {
		case ev := <-sess.Events():
			if err := writeSSE(w, ev); err != nil {
				return
			}
			_ = rc.Flush()
		default:
			return
		}
	}
}

func writeSSE(w io.Writer, ev stream.Event) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
	return err
}
