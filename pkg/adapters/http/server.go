package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/logging"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/aretw0/vine/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Server exposes a host's control surface over HTTP.
type Server struct {
	Host    ports.HostController
	Streams *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h (usually promhttp.Handler) at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server for host.
func NewServer(host ports.HostController, opts ...Option) *Server {
	s := &Server{
		Host:    host,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler for the host.
func NewHandler(host ports.HostController, opts ...Option) http.Handler {
	return NewServer(host, opts...).Handler()
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/status", s.GetStatus)
	r.Get("/frame", s.GetFrame)
	r.Get("/events", s.SubscribeEvents)
	r.Post("/reload", s.Reload)
	r.Post("/auto-reload", s.SetAutoReload)
	r.Post("/interact", s.Interact)
	r.Get("/shape", s.GetShape)
	r.Put("/shape", s.PatchShape)
	r.Post("/snapshot", s.SaveSnapshot)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return enableCORS(r)
}

// Hooks returns lifecycle hooks that publish host events to /events subscribers.
func (s *Server) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReloadCommitted: func(_ context.Context, e *domain.ReloadEvent) {
			s.publish(reloadMessage(e))
		},
		OnReloadRolledBack: func(_ context.Context, e *domain.ReloadEvent) {
			s.publish(reloadMessage(e))
		},
		OnScriptError: func(_ context.Context, e *domain.ScriptErrorEvent) {
			msg := EventMessage{Type: e.Type, Timestamp: e.Timestamp, Kind: e.Kind, Function: e.Function}
			if e.Err != nil {
				msg.Error = e.Err.Error()
			}
			s.publish(msg)
		},
		OnFrame: func(_ context.Context, e *domain.FrameEvent) {
			fallback := e.Fallback
			s.publish(EventMessage{Type: e.Type, Timestamp: e.Timestamp, Frame: e.Number, Fallback: &fallback})
		},
	}
}

// EventMessage is the JSON payload of one server-sent event.
type EventMessage struct {
	Type       domain.EventType `json:"type"`
	Timestamp  time.Time        `json:"timestamp"`
	Path       string           `json:"path,omitempty"`
	Generation uint64           `json:"generation,omitempty"`
	Forced     bool             `json:"forced,omitempty"`
	Kind       string           `json:"kind,omitempty"`
	Function   string           `json:"function,omitempty"`
	Error      string           `json:"error,omitempty"`
	Frame      uint64           `json:"frame,omitempty"`
	Fallback   *bool            `json:"fallback,omitempty"`
}

func reloadMessage(e *domain.ReloadEvent) EventMessage {
	msg := EventMessage{
		Type:       e.Type,
		Timestamp:  e.Timestamp,
		Path:       e.Path,
		Generation: e.Generation,
		Forced:     e.Forced,
	}
	if e.Err != nil {
		msg.Error = e.Err.Error()
	}
	return msg
}

func (s *Server) publish(msg EventMessage) {
	if !s.Streams.Active() {
		return
	}
	s.Streams.Broadcast(msg)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "vine-http",
		"version": vine.Version,
	})
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Host.Status())
}

// GetFrame handles the GET /frame request. ?format=outline returns plain text.
func (s *Server) GetFrame(w http.ResponseWriter, r *http.Request) {
	frame := s.Host.LastFrame()
	if frame == nil {
		http.Error(w, "No frame has been drawn yet", http.StatusNotFound)
		return
	}
	if r.URL.Query().Get("format") == "outline" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, frame.Outline())
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}

// Reload handles the POST /reload request.
func (s *Server) Reload(w http.ResponseWriter, r *http.Request) {
	if err := s.Host.RequestReload(r.Context()); err != nil {
		s.fail(w, "Reload", err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

// AutoReloadRequest is the body of POST /auto-reload. A missing Enabled toggles.
type AutoReloadRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetAutoReload handles the POST /auto-reload request.
func (s *Server) SetAutoReload(w http.ResponseWriter, r *http.Request) {
	var body AutoReloadRequest
	if err := decodeOptional(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SetAutoReload: Invalid request body", "err", err)
		return
	}
	enabled, err := s.Host.SetAutoReload(r.Context(), body.Enabled)
	if err != nil {
		s.fail(w, "SetAutoReload", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"auto_reload": enabled})
}

// Interact handles the POST /interact request.
func (s *Server) Interact(w http.ResponseWriter, r *http.Request) {
	var body gui.Interaction
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Interact: Invalid request body", "err", err)
		return
	}
	if err := body.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Host.Interact(r.Context(), body); err != nil {
		s.fail(w, "Interact", err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// GetShape handles the GET /shape request.
func (s *Server) GetShape(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Host.Scene(r.Context())
	if err != nil {
		s.fail(w, "GetShape", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// ShapeResponse is returned by PUT /shape.
type ShapeResponse struct {
	Snapshot domain.Snapshot      `json:"snapshot"`
	Changed  *domain.SnapshotDiff `json:"changed,omitempty"`
}

// PatchShape handles the PUT /shape request.
func (s *Server) PatchShape(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PatchShape: Invalid request body", "err", err)
		return
	}
	patch, err := domain.DecodeShapePatch(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid shape patch: %v", err), http.StatusBadRequest)
		return
	}

	before, err := s.Host.Scene(r.Context())
	if err != nil {
		s.fail(w, "PatchShape", err)
		return
	}
	after, err := s.Host.PatchScene(r.Context(), patch)
	if err != nil {
		s.fail(w, "PatchShape", err)
		return
	}
	diff := domain.Diff(&before, &after)
	if diff != nil {
		s.logger.Debug("PatchShape: scene changed", "diff", diff)
	}
	s.writeJSON(w, http.StatusOK, ShapeResponse{Snapshot: after, Changed: diff})
}

// SaveSnapshot handles the POST /snapshot request.
func (s *Server) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.Host.SaveSnapshot(r.Context()); err != nil {
		s.fail(w, "SaveSnapshot", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// SubscribeEvents handles the GET /events request (SSE). ?types= takes a
// comma-separated list of event types; frame events are only sent when
// asked for.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	watch := map[domain.EventType]bool{
		domain.EventReloadCommitted:  true,
		domain.EventReloadRolledBack: true,
		domain.EventScriptError:      true,
	}
	if types := r.URL.Query().Get("types"); types != "" {
		watch = make(map[domain.EventType]bool)
		for _, t := range strings.Split(types, ",") {
			watch[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !watch[msg.Type] {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data)
			flusher.Flush()
		}
	}
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan EventMessage]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan EventMessage]struct{}),
	}
}

// Subscribe registers a subscriber. The returned func unsubscribes and
// closes the channel.
func (sm *StreamManager) Subscribe() (<-chan EventMessage, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan EventMessage, 16)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Active reports whether anyone is subscribed.
func (sm *StreamManager) Active() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers) > 0
}

// Broadcast sends msg to every subscriber without blocking. Slow
// subscribers miss messages.
func (sm *StreamManager) Broadcast(msg EventMessage) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// ListenAndServe serves handler on addr until ctx is done, then shuts down.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("control server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, vine.ErrHostClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
	s.logger.Error(op+" failed", "err", err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
