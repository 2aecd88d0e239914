// Package server exposes monthly stats and month navigation over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/ArionMiles/spendlens/pkg/api"
	"github.com/ArionMiles/spendlens/pkg/navigator"
	"github.com/ArionMiles/spendlens/pkg/report"
	"github.com/ArionMiles/spendlens/pkg/stats"
)

// StatsService is the query side the API serves.
type StatsService interface {
	GetMonthlyStats(ctx context.Context, year, month int) (api.MonthlyStats, error)
	ExpensesInRange(ctx context.Context, start, end time.Time) ([]api.Expense, error)
	TestConnection(ctx context.Context) api.ConnectionStatus
}

// Options configures presentation details of the API.
type Options struct {
	AllowedOrigins []string
	Labels         navigator.Labels
	Currency       string
	// Clock decides which month is current. Defaults to time.Now.
	Clock func() time.Time
}

// Server handles API requests.
type Server struct {
	stats  StatsService
	nav    *navigator.Controller
	opts   Options
	logger *slog.Logger
}

// New creates a Server. nav drives the /navigator endpoints.
func New(svc StatsService, nav *navigator.Controller, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Labels.Layout == "" {
		opts.Labels = navigator.VietnameseLabels
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Server{stats: svc, nav: nav, opts: opts, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats/{year}/{month}", s.handleMonthlyStats)
		r.Get("/expenses", s.handleExpenses)

		r.Route("/navigator", func(r chi.Router) {
			r.Get("/", s.handleNavigatorState)
			r.Post("/previous", s.handleNavigate(navigator.ActionPrevious))
			r.Post("/next", s.handleNavigate(navigator.ActionNext))
			r.Post("/refresh", s.handleNavigate(navigator.ActionRefresh))
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	return c.Handler(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.stats.TestConnection(r.Context())
	code := http.StatusOK
	if !status.Success {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, status)
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "month must be an integer")
		return
	}

	monthly, err := s.stats.GetMonthlyStats(r.Context(), year, month)
	if err != nil {
		s.writeStatsError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	rep := report.Stats{
		Label:    s.opts.Labels.Format(navigator.Selection{Year: year, Month: month}),
		Year:     year,
		Month:    month,
		Currency: s.opts.Currency,
		Stats:    monthly,
	}
	if err := (&report.JSON{}).WriteStats(w, rep); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.DateOnly, r.URL.Query().Get("from"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "from must be a YYYY-MM-DD date")
		return
	}
	to, err := time.Parse(time.DateOnly, r.URL.Query().Get("to"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "to must be a YYYY-MM-DD date")
		return
	}

	expenses, err := s.stats.ExpensesInRange(r.Context(), from, to)
	if err != nil {
		s.writeStatsError(w, err)
		return
	}
	if expenses == nil {
		expenses = []api.Expense{}
	}
	s.writeJSON(w, http.StatusOK, expenses)
}

// navigatorView is the navigator state as served to clients.
type navigatorView struct {
	navigator.State
	Label          string `json:"label"`
	IsCurrentMonth bool   `json:"isCurrentMonth"`
}

func (s *Server) viewOf(st navigator.State) navigatorView {
	return navigatorView{
		State:          st,
		Label:          s.opts.Labels.Format(st.Selection),
		IsCurrentMonth: st.Selection == navigator.SelectionOf(s.opts.Clock()),
	}
}

// handleNavigatorState answers with the current state. The first request on an idle
// navigator runs the initial load for the current month and answers once it settles.
func (s *Server) handleNavigatorState(w http.ResponseWriter, r *http.Request) {
	if s.nav.State().Status == navigator.StatusIdle {
		if load, ok := s.nav.Do(context.WithoutCancel(r.Context()), navigator.ActionStart); ok {
			s.writeJSON(w, http.StatusOK, s.viewOf(load.Wait()))
			return
		}
	}
	s.writeJSON(w, http.StatusOK, s.viewOf(s.nav.State()))
}

// handleNavigate runs a navigator action and answers with the state that action's load
// settled in. A refused action (a load is already in flight) answers 409 with the current state.
func (s *Server) handleNavigate(action navigator.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The load must not be canceled when the client goes away mid-request.
		load, ok := s.nav.Do(context.WithoutCancel(r.Context()), action)
		if !ok {
			s.writeJSON(w, http.StatusConflict, s.viewOf(s.nav.State()))
			return
		}
		s.writeJSON(w, http.StatusOK, s.viewOf(load.Wait()))
	}
}

func (s *Server) writeStatsError(w http.ResponseWriter, err error) {
	var fetchErr *stats.DataFetchError
	switch {
	case errors.Is(err, stats.ErrInvalidArgument):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &fetchErr):
		s.logger.Error("store query failed", "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("unexpected error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
