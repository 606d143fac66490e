package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"skillquiz-service/internal/app"
	"skillquiz-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	AllowedOrigins []string
	Metrics        http.Handler
	Logger         *zap.Logger
}

// NewRouter mounts the REST API, the websocket endpoint and operational routes.
func NewRouter(service *app.QuizService, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	ws := NewWSHandler(service, opts.Logger)
	r.Get("/ws", ws.ServeWS)

	api := &apiHandler{service: service}
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/domains", api.domains)
		r.Get("/levels", api.levels)
		r.Get("/progress/{userID}", api.progress)
		r.Get("/questions", api.questions)
	})
	return r
}

type apiHandler struct {
	service *app.QuizService
}

func (h *apiHandler) domains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Domains())
}

func (h *apiHandler) levels(w http.ResponseWriter, r *http.Request) {
	upTo, _ := strconv.Atoi(r.URL.Query().Get("upTo"))
	tiers, err := h.service.Levels(r.Context(), r.URL.Query().Get("userId"), upTo)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tiers)
}

func (h *apiHandler) progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Progress(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *apiHandler) questions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	qs, fallback, err := h.service.Preview(r.Context(), r.URL.Query().Get("domain"), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"questions": qs, "fallback": fallback})
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMissingUser), errors.Is(err, domain.ErrInvalidLevel):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCorpusUnavailable):
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, errorPayload{Message: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
