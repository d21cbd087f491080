// Package ingest exposes conversations over HTTP: pushed events, edits,
// typing status and a debug dump of what each transcript shows.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/user/transcript/internal/dispatch"
	"github.com/user/transcript/internal/types"
)

const maxBodyBytes = 1 << 20

// Target is what the server drives. dispatch.Hub satisfies it.
type Target interface {
	Keys() []types.ConversationKey
	SetEvents(ctx context.Context, key types.ConversationKey, events []*types.Event) error
	MergeEvents(ctx context.Context, key types.ConversationKey, events []*types.Event) error
	AppendLiveEvent(ctx context.Context, key types.ConversationKey, event *types.Event) (bool, error)
	UpdateEvent(ctx context.Context, key types.ConversationKey, event *types.Event) (bool, error)
	SetTyping(ctx context.Context, key types.ConversationKey, typing bool, preview string) error
	ToggleDetail(ctx context.Context, key types.ConversationKey, seq int64) (bool, error)
	Snapshot(ctx context.Context, key types.ConversationKey) (*dispatch.Transcript, error)
}

// Server is a lightweight HTTP handler for the ingest endpoints.
type Server struct {
	target Target
	mux    *http.ServeMux
}

// NewServer creates a Server driving target.
func NewServer(target Target) *Server {
	s := &Server{
		target: target,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /conversations", s.handleList)
	s.mux.HandleFunc("PUT /conversations/{key}/events", s.handleSetEvents)
	s.mux.HandleFunc("POST /conversations/{key}/events", s.handleAppend)
	s.mux.HandleFunc("POST /conversations/{key}/merge", s.handleMerge)
	s.mux.HandleFunc("PUT /conversations/{key}/events/{seq}", s.handleUpdate)
	s.mux.HandleFunc("POST /conversations/{key}/events/{seq}/details", s.handleToggleDetail)
	s.mux.HandleFunc("POST /conversations/{key}/typing", s.handleTyping)
	s.mux.HandleFunc("GET /conversations/{key}/transcript", s.handleTranscript)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("ingest server started", "listen", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ingest server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	keys := s.target.Keys()
	if keys == nil {
		keys = []types.ConversationKey{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": keys})
}

// eventsRequest is the JSON body for bulk loads and merges.
type eventsRequest struct {
	Events []*types.Event `json:"events"`
}

func (s *Server) handleSetEvents(w http.ResponseWriter, r *http.Request) {
	var req eventsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key := conversationKey(r)
	if err := s.target.SetEvents(r.Context(), key, req.Events); err != nil {
		s.fail(w, "set events", key, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"loaded": len(req.Events)})
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req eventsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key := conversationKey(r)
	if err := s.target.MergeEvents(r.Context(), key, req.Events); err != nil {
		s.fail(w, "merge events", key, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"merged": len(req.Events)})
}

// handleAppend accepts one pushed event. A typing_status event drives the
// typing indicator instead of the transcript.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var event types.Event
	if !decodeBody(w, r, &event) {
		return
	}
	key := conversationKey(r)

	if event.Kind == types.KindTypingStatus {
		var status typingRequest
		if len(event.Payload) > 0 {
			if err := json.Unmarshal(event.Payload, &status); err != nil {
				writeError(w, http.StatusBadRequest, "invalid typing_status payload")
				return
			}
		}
		if err := s.target.SetTyping(r.Context(), key, status.Typing, status.Preview); err != nil {
			s.fail(w, "set typing", key, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"typing": status.Typing})
		return
	}

	shown, err := s.target.AppendLiveEvent(r.Context(), key, &event)
	if err != nil {
		s.fail(w, "append event", key, err)
		return
	}
	status := http.StatusCreated
	if !shown {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{"seq": event.Seq, "shown": shown})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	seq, ok := pathSeq(w, r)
	if !ok {
		return
	}
	var event types.Event
	if !decodeBody(w, r, &event) {
		return
	}
	if event.Seq == 0 {
		event.Seq = seq
	}
	if event.Seq != seq {
		writeError(w, http.StatusBadRequest, "seq in body does not match path")
		return
	}

	key := conversationKey(r)
	found, err := s.target.UpdateEvent(r.Context(), key, &event)
	if err != nil {
		s.fail(w, "update event", key, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"seq": seq})
}

func (s *Server) handleToggleDetail(w http.ResponseWriter, r *http.Request) {
	seq, ok := pathSeq(w, r)
	if !ok {
		return
	}
	key := conversationKey(r)
	found, err := s.target.ToggleDetail(r.Context(), key, seq)
	if err != nil {
		s.fail(w, "toggle detail", key, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"seq": seq})
}

// typingRequest is the JSON body for POST .../typing, and the payload of a
// typing_status event.
type typingRequest struct {
	Typing  bool   `json:"is_typing"`
	Preview string `json:"preview"`
}

func (s *Server) handleTyping(w http.ResponseWriter, r *http.Request) {
	var req typingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key := conversationKey(r)
	if err := s.target.SetTyping(r.Context(), key, req.Typing, req.Preview); err != nil {
		s.fail(w, "set typing", key, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"typing": req.Typing})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	key := conversationKey(r)
	t, err := s.target.Snapshot(r.Context(), key)
	if err != nil {
		s.fail(w, "snapshot", key, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) fail(w http.ResponseWriter, op string, key types.ConversationKey, err error) {
	slog.Error("ingest request failed", "op", op, "conversation", string(key), "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, dispatch.ErrStopped) {
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, "internal server error")
}

func conversationKey(r *http.Request) types.ConversationKey {
	return types.ConversationKey(r.PathValue("key"))
}

func pathSeq(w http.ResponseWriter, r *http.Request) (int64, bool) {
	seq, err := strconv.ParseInt(r.PathValue("seq"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid seq")
		return 0, false
	}
	return seq, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
