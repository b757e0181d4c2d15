package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/datalink/internal/dispatch"
	"github.com/leapstack-labs/datalink/pkg/grid"
)

// errorReply writes a JSON error body with the given status.
func errorReply(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrNoCommand), errors.Is(err, dispatch.ErrBadCommand):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrUnknownService), errors.Is(err, dispatch.ErrUnknownMethod):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrBadSignature):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// handleCommand decodes a record, dispatches its command, and replies with
// the returned record (or no content when the method returns nothing).
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	rec := grid.NewRecord()
	if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
		errorReply(w, http.StatusBadRequest, fmt.Errorf("decode record: %w", err))
		return
	}

	reply, err := s.registry.Call(r.Context(), rec)
	if err != nil {
		s.logger.Error("command failed", "error", err)
		errorReply(w, statusFor(err), err)
		return
	}
	if reply == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		s.logger.Error("encode reply", "error", err)
	}
}

// handleData serves a named table in its wire form.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tbl, err := s.store.Table(name)
	if err != nil {
		errorReply(w, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tbl); err != nil {
		s.logger.Error("encode table", "name", name, "error", err)
	}
}

// handleDataNames lists the available tables.
func (s *Server) handleDataNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.Names()
	if err != nil {
		errorReply(w, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(names)
}

// handleNotify lets services and operators announce a data change; every
// listener on the side channel gets a ping and caches drop wholesale.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	s.store.Invalidate()
	s.notifier.Broadcast()
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents streams side-channel pings as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		errorReply(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			if _, err := fmt.Fprint(w, "data: changed\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
