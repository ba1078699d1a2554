package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hackeddesign/claire"
	"github.com/hackeddesign/claire/pkg/domain"
	pmw "github.com/hackeddesign/claire/pkg/persistence/middleware"
	"github.com/hackeddesign/claire/pkg/runner"
)

// Engine is the subset of claire.Engine the server drives.
type Engine interface {
	Turn(ctx context.Context, conversationID string, input *string) (*claire.TurnResult, error)
	StartIntent(ctx context.Context, conversationID, intent string, options map[string]any) (*claire.TurnResult, error)
	Reset(ctx context.Context, conversationID string) (*claire.TurnResult, error)
	Inspect(ctx context.Context, conversationID string) (*domain.State, error)
	Delete(ctx context.Context, conversationID string) error
}

// CreateRequest starts a conversation.
type CreateRequest struct {
	Intent  string         `json:"intent,omitempty" validate:"omitempty,max=128"`
	Options map[string]any `json:"options,omitempty"`
}

// TurnRequest carries one user message. A missing text is an empty message.
type TurnRequest struct {
	Text *string `json:"text"`
}

// TurnResponse is the committed outcome of a turn.
type TurnResponse struct {
	ConversationID string            `json:"conversation_id"`
	Activities     []domain.Activity `json:"activities"`
	Active         bool              `json:"active"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves the conversation API.
type Server struct {
	engine   Engine
	streams  *StreamManager
	validate *validator.Validate
	pii      []*regexp.Regexp
	metrics  http.Handler
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithPIIPatterns masks matching slot keys in GET /conversations/{id}.
// Invalid patterns are skipped.
func WithPIIPatterns(patterns []string) Option {
	return func(s *Server) {
		for _, p := range patterns {
			if re, err := regexp.Compile(p); err == nil {
				s.pii = append(s.pii, re)
			}
		}
	}
}

// NewServer creates a server over engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		streams:  NewStreamManager(),
		validate: validator.New(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Streams returns the SSE fan-out used by the server.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/conversations", func(r chi.Router) {
		r.Post("/", s.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.inspect)
			r.Delete("/", s.remove)
			r.Post("/turns", s.turn)
			r.Post("/reset", s.reset)
			r.Get("/events", s.events)
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":  "ok",
		"version": strings.TrimSpace(claire.Version),
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	id := uuid.NewString()
	if req.Intent == "" {
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, TurnResponse{ConversationID: id, Activities: []domain.Activity{}})
		return
	}

	res, err := s.engine.StartIntent(r.Context(), id, req.Intent, req.Options)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.publish(res)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toResponse(res))
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request) {
	id, ok := s.conversationID(w, r)
	if !ok {
		return
	}

	var req TurnRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Text != nil {
		clean, err := runner.SanitizeInput(*req.Text)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err), err)
			return
		}
		req.Text = &clean
	}

	res, err := s.engine.Turn(r.Context(), id, req.Text)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.publish(res)
	render.JSON(w, r, toResponse(res))
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.conversationID(w, r)
	if !ok {
		return
	}
	res, err := s.engine.Reset(r.Context(), id)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.publish(res)
	render.JSON(w, r, toResponse(res))
}

func (s *Server) inspect(w http.ResponseWriter, r *http.Request) {
	id, ok := s.conversationID(w, r)
	if !ok {
		return
	}
	state, err := s.engine.Inspect(r.Context(), id)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	if len(s.pii) > 0 {
		if state, err = pmw.Redact(state, s.pii); err != nil {
			s.fail(w, r, http.StatusInternalServerError, "failed to redact state", err)
			return
		}
	}
	render.JSON(w, r, state)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.conversationID(w, r)
	if !ok {
		return
	}
	if err := s.engine.Delete(r.Context(), id); err != nil {
		s.engineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) conversationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := s.validate.Var(id, "required,max=128,printascii"); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid conversation id", err)
		return "", false
	}
	return id, true
}

func (s *Server) publish(res *claire.TurnResult) {
	if res.Diff != nil {
		s.streams.Broadcast(res.ConversationID, res.Diff)
	}
}

// engineError maps domain errors to status codes.
func (s *Server) engineError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownIntent):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMalformedFrame), errors.Is(err, domain.ErrMalformedState):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	s.fail(w, r, status, err.Error(), err)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()), "path", r.URL.Path)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", status, "err", err)
	} else {
		logger.Debug("Request rejected", "status", status, "err", err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func toResponse(res *claire.TurnResult) TurnResponse {
	activities := res.Activities
	if activities == nil {
		activities = []domain.Activity{}
	}
	return TurnResponse{
		ConversationID: res.ConversationID,
		Activities:     activities,
		Active:         res.Active,
	}
}
