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

	"github.com/aretw0/fernspiel"
	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/phone"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxBookSize bounds the body of POST /book.
const DefaultMaxBookSize = 64 << 20

// Server publishes state events over SSE and exposes the remote control API.
// It implements ports.EventServer.
type Server struct {
	Streams *StreamManager

	control     ports.Control
	phone       *phone.Phone
	gatherer    prometheus.Gatherer
	journal     ports.Journal
	spec        *openapi3.T
	bookDir     string
	maxBookSize int64
	logger      *slog.Logger

	mu   sync.RWMutex
	last *domain.StateEvent
}

var _ ports.EventServer = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithControl enables the control endpoints (POST /book, /reset, /dial and GET /status).
func WithControl(c ports.Control) Option {
	return func(s *Server) {
		s.control = c
	}
}

// WithPhone exposes the line status at GET /phone.
func WithPhone(p *phone.Phone) Option {
	return func(s *Server) {
		s.phone = p
	}
}

// WithGatherer serves the given metrics at GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithJournal serves the recorded history at GET /runs and GET /runs/{runID}/events.
func WithJournal(j ports.Journal) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// WithBookDir sets the directory relative sound files of uploaded YAML books resolve against.
func WithBookDir(dir string) Option {
	return func(s *Server) {
		s.bookDir = dir
	}
}

// WithMaxBookSize bounds the size of uploaded books.
func WithMaxBookSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBookSize = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server. The embedded API description is loaded and validated.
func NewServer(ctx context.Context, opts ...Option) (*Server, error) {
	s := &Server{
		maxBookSize: DefaultMaxBookSize,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	spec, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	s.spec = spec
	return s, nil
}

// Publish records event as the current state and broadcasts it to SSE clients.
func (s *Server) Publish(ctx context.Context, event domain.StateEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode state event: %w", err)
	}

	s.mu.Lock()
	s.last = &event
	s.mu.Unlock()

	s.Streams.Broadcast(string(data))
	return nil
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	return enableCORS(s.routes())
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/state", s.GetState)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/phone", s.GetPhone)

	if s.control != nil {
		r.Get("/status", s.GetStatus)
		r.Post("/book", s.SwitchBook)
		r.Post("/reset", s.Reset)
		r.Post("/dial/{symbol}", s.Dial)
	}
	if s.journal != nil {
		r.Get("/runs", s.ListRuns)
		r.Get("/runs/{runID}/events", s.ListRunEvents)
	}
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
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
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "fernspiel",
		"version":     strings.TrimSpace(fernspiel.Version),
		"api_version": apiVersion,
	})
}

// GetSpec handles the GET /openapi.yaml request.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write(rawSpec)
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		s.writeError(w, http.StatusNotFound, errors.New("no state published yet"))
		return
	}
	s.writeJSON(w, http.StatusOK, last)
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.control.Status(r.Context())
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.journal.Runs(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []string{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// ListRunEvents handles the GET /runs/{runID}/events request.
func (s *Server) ListRunEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.journal.Events(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if events == nil {
		events = []domain.StateEvent{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

// GetPhone handles the GET /phone request. The line is read under the phone lock.
func (s *Server) GetPhone(w http.ResponseWriter, r *http.Request) {
	if s.phone == nil {
		s.writeError(w, http.StatusNotFound, errors.New("no phone attached"))
		return
	}
	s.writeJSON(w, http.StatusOK, s.phone.Status())
}

// SwitchBook handles the POST /book request. The body is a YAML document or a zip archive.
func (s *Server) SwitchBook(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBookSize))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	b, err := book.FromBytes(data, s.bookDir)
	if err != nil {
		s.logger.Warn("SwitchBook: Invalid book", "err", err)
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	if err := s.control.Switch(r.Context(), b); err != nil {
		s.writeControlError(w, err)
		return
	}

	st, err := s.control.Status(r.Context())
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, st)
}

// Reset handles the POST /reset request.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	if err := s.control.Reset(r.Context()); err != nil {
		s.writeControlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dial handles the POST /dial/{symbol} request.
func (s *Server) Dial(w http.ResponseWriter, r *http.Request) {
	in, err := domain.ParseInput(chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.control.Dial(r.Context(), in); err != nil {
		if errors.Is(err, domain.ErrRunnerStopped) {
			s.writeControlError(w, err)
			return
		}
		s.writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: Client connected", "clients", s.Streams.Len())

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: Client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) writeControlError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRunnerStopped), errors.Is(err, context.Canceled):
		s.writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, domain.ErrActuation):
		s.logger.Error("Control command failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
	default:
		s.writeError(w, http.StatusUnprocessableEntity, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	resp := errorResponse{Error: err.Error()}
	for _, e := range book.ValidationErrors(err) {
		resp.Details = append(resp.Details, e.Error())
	}
	s.writeJSON(w, code, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
