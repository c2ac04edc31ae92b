// Package http exposes sessions over a JSON, WebSocket and SSE API.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/wca"
	"github.com/aretw0/wca/internal/presentation/graph"
	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/aretw0/wca/pkg/ports"
	"github.com/aretw0/wca/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxFrameBytes bounds the body of a posted frame.
const MaxFrameBytes = 32 << 20

// ContentTypeMachine is the media type of an encoded machine.
const ContentTypeMachine = "application/x-protobuf"

// Server serves a single machine to many sessions.
type Server struct {
	Sessions ports.StreamPort
	Machine  fsm.Machine
	Streams  *StreamManager

	regs     *callable.Registries
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer sets the registry served on /metrics.
// Defaults to prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithRegistries enables GET /v1/machine?format=binary, which needs the
// registries to encode the graph.
func WithRegistries(regs *callable.Registries) Option {
	return func(s *Server) {
		s.regs = regs
	}
}

// NewServer creates a Server for the sessions of machine m.
func NewServer(sessions ports.StreamPort, m fsm.Machine, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Machine:  m,
		Streams:  NewStreamManager(),
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the sessions of machine m.
func NewHandler(sessions ports.StreamPort, m fsm.Machine, opts ...Option) http.Handler {
	return NewServer(sessions, m, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/openapi.yaml", s.GetAPIDocument)
	r.Get("/swagger", s.GetSwagger)

	r.Route("/v1", func(r chi.Router) {
		if router, err := apiRouter(); err != nil {
			s.logger.Error("request validation disabled", "err", err)
		} else {
			r.Use(s.validateRequests(router))
		}

		r.Get("/machine", s.GetMachine)
		r.Get("/machine/graph", s.GetMachineGraph)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.ListSessions)
			r.Post("/", s.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetSession)
				r.Delete("/", s.DeleteSession)
				r.Post("/reset", s.ResetSession)
				r.Post("/frames", s.PostFrame)
				r.Get("/stream", s.StreamFrames)
				r.Get("/events", s.SubscribeEvents)
			})
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "wca-http",
		"version": strings.TrimSpace(wca.Version),
		"machine": s.Machine.Name,
	})
}

// GetMachine handles GET /v1/machine. With ?format=binary it returns the
// encoded machine.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") != "binary" {
		s.writeJSON(w, http.StatusOK, NewMachineView(s.Machine))
		return
	}
	if s.regs == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("binary export is not enabled"))
		return
	}
	data, err := fsm.EncodeMachine(s.Machine, s.regs)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", ContentTypeMachine)
	w.Write(data)
}

// GetMachineGraph handles GET /v1/machine/graph. With ?session=<id> the
// session's current state is highlighted.
func (s *Server) GetMachineGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		snap, err := s.Sessions.Current(id)
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
		overlay = &graph.GraphOverlay{CurrentState: snap.State}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.Machine.Start, overlay))
}

func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Sessions.List()})
}

// CreateSession handles POST /v1/sessions. The session ID is generated.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Create(uuid.NewString())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+snap.ID)
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Current(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Reset(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// FeedResponse is the result of feeding one frame.
type FeedResponse struct {
	FrameID     uint64              `json:"frame_id"`
	Instruction *domain.Instruction `json:"instruction,omitempty"`
	Session     session.Snapshot    `json:"session"`
	Error       string              `json:"error,omitempty"`
}

// PostFrame handles POST /v1/sessions/{id}/frames. The body is the raw
// frame (typically a JPEG); ?frame_id= sets the frame ID.
// The session is created on first use.
func (s *Server) PostFrame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var frameID uint64
	if raw := r.URL.Query().Get("frame_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("invalid frame_id"))
			return
		}
		frameID = v
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxFrameBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	resp, err := s.feed(r, id, domain.Frame{ID: frameID, Data: data, ContentType: r.Header.Get("Content-Type")})
	if err != nil {
		s.writeJSON(w, statusFor(err), resp)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) feed(r *http.Request, id string, frame domain.Frame) (FeedResponse, error) {
	inst, snap, err := s.Sessions.Feed(r.Context(), id, frame)
	resp := FeedResponse{FrameID: frame.ID, Session: snap}
	if err != nil {
		resp.Error = err.Error()
		s.logger.Warn("feed failed", "session_id", id, "frame_id", frame.ID, "err", err)
	} else if !inst.IsEmpty() {
		resp.Instruction = &inst
	}
	if payload, jerr := json.Marshal(resp); jerr == nil {
		s.Streams.Broadcast(id, string(payload))
	}
	return resp, err
}

func statusFor(err error) int {
	var stateErr *domain.StateError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRunnerFaulted), errors.Is(err, domain.ErrNullCurrentState):
		return http.StatusConflict
	case errors.As(err, &stateErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
