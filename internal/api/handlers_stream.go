package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/smukkama/factory-monitor/internal/live"
	"github.com/smukkama/factory-monitor/internal/protocol"
)

// handleSensorStream pushes live readings as server-sent events until the
// client goes away.
func (a *API) handleSensorStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	machineID := chi.URLParam(r, "machineID")
	readings, err := a.hub.Subscribe(r.Context(), machineID)
	if errors.Is(err, live.ErrUnknownMachine) {
		respondError(w, http.StatusNotFound, errMachineNotFound)
		return
	}
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(a.keepalive)
	defer keepalive.Stop()

	seq := 0
	for {
		select {
		case msg, open := <-readings:
			if !open {
				return
			}
			data, err := protocol.EncodeReadingMessage(msg)
			if err != nil {
				log.Error().Err(err).Str("machine_id", machineID).Msg("failed to encode reading")
				continue
			}
			seq++
			if err := protocol.WriteEvent(w, protocol.Event{
				ID:    strconv.Itoa(seq),
				Event: string(protocol.MsgTypeReading),
				Data:  data,
			}); err != nil {
				return
			}
			flusher.Flush()

		case <-keepalive.C:
			if err := protocol.WriteComment(w, string(protocol.MsgTypeKeepalive)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
