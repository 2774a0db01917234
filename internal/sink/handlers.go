package sink

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/segmentform/internal/logging"
	"github.com/muurk/segmentform/internal/segment"
)

// maxBodySize caps the accepted submission size
const maxBodySize = 1 << 20

// requestIDHeader mirrors the header set by the submit client
const requestIDHeader = "X-Request-ID"

// submitResponse is returned for an accepted segment
type submitResponse struct {
	ID string `json:"id"`
}

// errorResponse is returned for rejected requests
type errorResponse struct {
	Error string `json:"error"`
}

// handleSubmit accepts one wire payload per request
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, map[string]string{
		"content_type": r.Header.Get("Content-Type"),
		"request_id":   r.Header.Get(requestIDHeader),
		"user_agent":   r.UserAgent(),
	})

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, r, http.StatusRequestEntityTooLarge, errorResponse{Error: "payload too large"})
			return
		}
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
		return
	}
	logging.LogPayload("Received segment payload", body)

	seg, err := segment.ParsePayload(body)
	if err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	record := Record{
		ID:         s.newID(),
		ReceivedAt: s.now().UTC(),
		RemoteAddr: r.RemoteAddr,
		RequestID:  r.Header.Get(requestIDHeader),
		Segment:    seg,
	}

	s.history.Add(record)
	s.hub.Broadcast(record)
	logging.LogSegmentReceived(r.RemoteAddr, record.ID, seg.Name, seg.Keys())

	if s.config.OnRecord != nil {
		s.config.OnRecord(record)
	}

	s.writeJSON(w, r, http.StatusCreated, submitResponse{ID: record.ID})
}

// handleList returns every stored record, oldest first
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.history.List())
}

// handleGet returns a single record by id
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	record, ok := s.history.Get(r.PathValue("id"))
	if !ok {
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "record not found"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, record)
}

// handleWatch upgrades to a websocket live feed
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	s.hub.Serve(conn)
}

// handleHealth reports liveness and counters
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]int{
		"records":  s.history.Len(),
		"watchers": s.hub.Count(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	n, _ := w.Write(data)

	logging.LogHTTPResponse(r.RemoteAddr, status, n)
}

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// The feed is read-only and served on a local network
		CheckOrigin: func(r *http.Request) bool { return true },
	}
}

func defaultNow() time.Time { return time.Now() }

func defaultID() string { return uuid.NewString() }
