package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crescent-wealth/advisor-cli/internal/advisor"
	"github.com/crescent-wealth/advisor-cli/internal/catalog"
	"github.com/crescent-wealth/advisor-cli/internal/monitoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the advisory HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cat, err := catalog.Load()
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		metrics := monitoring.New(reg)

		api := &apiServer{
			catalog:   cat,
			validator: advisor.NewValidator(cat),
			provider:  buildProvider(cat),
			metrics:   metrics,
			sessions:  make(map[string]*sessionSlot),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(reg),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// sessionSlot pairs a session with its answer rate limiter.
type sessionSlot struct {
	session *advisor.Session
	limiter *rate.Limiter
}

// apiServer holds the in-memory session registry and shared dependencies.
// Sessions live for the duration of the consultation only; there is no
// persistence layer.
type apiServer struct {
	catalog   *catalog.Catalog
	validator *advisor.Validator
	provider  advisor.Provider
	metrics   *monitoring.Metrics

	mu       sync.Mutex
	sessions map[string]*sessionSlot
}

func (a *apiServer) routes(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method("GET", "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/catalog", a.handleCatalog)
	r.Post("/sessions", a.handleCreateSession)
	r.Get("/sessions/{id}", a.handleGetSession)
	r.Post("/sessions/{id}/answer", a.handleAnswer)
	r.Delete("/sessions/{id}", a.handleDeleteSession)

	return r
}

// stepResponse is the wire shape of every session endpoint.
type stepResponse struct {
	SessionID    string        `json:"session_id"`
	State        string        `json:"state"`
	Step         *advisor.Step `json:"step,omitempty"`
	HistoryLen   int           `json:"history_len"`
	TargetWealth float64       `json:"target_wealth,omitempty"`
}

func (a *apiServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": a.catalog.Products()})
	a.metrics.HTTPRequests.WithLabelValues("catalog", "2xx").Inc()
}

func (a *apiServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := advisor.NewSession(a.provider, a.validator, sessionConfig(a.metrics))

	step, err := session.Start(r.Context())
	if err != nil {
		a.metrics.HTTPRequests.WithLabelValues("create_session", "5xx").Inc()
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	a.mu.Lock()
	a.sessions[session.ID()] = &sessionSlot{
		session: session,
		limiter: rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
	}
	a.mu.Unlock()
	a.metrics.SessionsStarted.Inc()
	a.metrics.SessionsActive.Inc()
	a.metrics.HTTPRequests.WithLabelValues("create_session", "2xx").Inc()

	writeJSON(w, http.StatusCreated, stepResponse{
		SessionID:  session.ID(),
		State:      session.State().String(),
		Step:       &step,
		HistoryLen: 0,
	})
}

func (a *apiServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	slot, ok := a.lookup(chi.URLParam(r, "id"))
	if !ok {
		a.metrics.HTTPRequests.WithLabelValues("get_session", "4xx").Inc()
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	session := slot.session
	a.metrics.HTTPRequests.WithLabelValues("get_session", "2xx").Inc()
	writeJSON(w, http.StatusOK, stepResponse{
		SessionID:    session.ID(),
		State:        session.State().String(),
		Step:         session.Current(),
		HistoryLen:   len(session.History()),
		TargetWealth: session.TargetWealth(),
	})
}

func (a *apiServer) handleAnswer(w http.ResponseWriter, r *http.Request) {
	slot, ok := a.lookup(chi.URLParam(r, "id"))
	if !ok {
		a.metrics.HTTPRequests.WithLabelValues("answer", "4xx").Inc()
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	if !slot.limiter.Allow() {
		a.metrics.HTTPRequests.WithLabelValues("answer", "4xx").Inc()
		writeError(w, http.StatusTooManyRequests, "slow down")
		return
	}

	var req struct {
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Answer) == 0 {
		a.metrics.HTTPRequests.WithLabelValues("answer", "4xx").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	step, err := slot.session.RecordAnswer(r.Context(), decodeAnswer(req.Answer))
	if err != nil {
		a.answerError(w, err)
		return
	}

	a.metrics.HTTPRequests.WithLabelValues("answer", "2xx").Inc()
	writeJSON(w, http.StatusOK, stepResponse{
		SessionID:    slot.session.ID(),
		State:        slot.session.State().String(),
		Step:         &step,
		HistoryLen:   len(slot.session.History()),
		TargetWealth: slot.session.TargetWealth(),
	})
}

// answerError maps protocol errors onto distinct statuses: a terminated or
// out-of-order call means the client integration is broken and the session
// must be restarted, not repaired.
func (a *apiServer) answerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, advisor.ErrSessionTerminated), errors.Is(err, advisor.ErrNotStarted):
		a.metrics.HTTPRequests.WithLabelValues("answer", "4xx").Inc()
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "session corrupted, restart required",
			"detail": err.Error(),
		})
	case errors.Is(err, advisor.ErrStepPending):
		a.metrics.HTTPRequests.WithLabelValues("answer", "4xx").Inc()
		writeError(w, http.StatusConflict, "a step request is already in flight")
	default:
		zap.L().Error("record answer failed", zap.Error(err))
		a.metrics.HTTPRequests.WithLabelValues("answer", "5xx").Inc()
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (a *apiServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.mu.Lock()
	_, ok := a.sessions[id]
	delete(a.sessions, id)
	a.mu.Unlock()
	if ok {
		a.metrics.SessionsActive.Dec()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) lookup(id string) (*sessionSlot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot, ok := a.sessions[id]
	return slot, ok
}

// decodeAnswer unwraps the raw answer into a string, number, or structured
// value so history entries carry plain values rather than raw JSON.
func decodeAnswer(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
