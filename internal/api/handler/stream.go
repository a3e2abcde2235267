package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/api/response"
	"github.com/Rrens/floorboard/internal/livesync"
)

const keepAliveInterval = 25 * time.Second

// Subscriber delivers every new catalog snapshot
type Subscriber interface {
	Snapshot() *livesync.Snapshot
	Subscribe(fn func(*livesync.Snapshot)) (unsubscribe func())
}

// changeEvent tells clients which collections moved on
type changeEvent struct {
	Versions    livesync.Versions `json:"versions"`
	Quarantined int               `json:"quarantined"`
}

// StreamHandler pushes change notifications as server-sent events
type StreamHandler struct {
	source Subscriber
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(source Subscriber) *StreamHandler {
	return &StreamHandler{source: source}
}

// Stream sends the current versions, then one "change" event per snapshot.
// Bursts coalesce into the latest snapshot. The subscription ends with the
// request.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	updates := make(chan *livesync.Snapshot, 1)
	unsubscribe := h.source.Subscribe(func(s *livesync.Snapshot) {
		select {
		case updates <- s:
		default:
			// Replace the pending snapshot with the newer one.
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(s *livesync.Snapshot) error {
		data, err := json.Marshal(changeEvent{Versions: s.Versions, Quarantined: len(s.Quarantined)})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send(h.source.Snapshot()); err != nil {
		log.Debug().Err(err).Msg("Stream flush unsupported")
		return
	}

	reqID := middleware.GetReqID(r.Context())
	log.Debug().Str("request_id", reqID).Msg("Stream opened")
	defer log.Debug().Str("request_id", reqID).Msg("Stream closed")

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case s := <-updates:
			if err := send(s); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// Snapshot returns the whole decoded catalog, including quarantined documents
func (h *StreamHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.source.Snapshot())
}
