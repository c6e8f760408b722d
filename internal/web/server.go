// Package web serves the landing page that tells players how to connect and
// publishes the round rules as JSON.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomz197/frogduel/internal/config"
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// Rules describes a round to people who have not played yet.
type Rules struct {
	CountdownMS           int64   `json:"countdown_ms"`
	ReadyMinMS            int64   `json:"ready_min_ms"`
	ReadyMaxMS            int64   `json:"ready_max_ms"`
	ReactionDelayMS       int64   `json:"reaction_delay_ms"`
	StrikeMS              int64   `json:"strike_ms"`
	ZoneRadius            float64 `json:"zone_radius"`
	RequiredOpportunities int     `json:"required_opportunities"`
	WindowMS              int64   `json:"window_ms"`
	SSHCommand            string  `json:"ssh_command"`
}

// RulesFromConfig derives the published rules from the loaded configuration.
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		CountdownMS:           cfg.Round.Countdown.Milliseconds(),
		ReadyMinMS:            cfg.Round.ReadyMin.Milliseconds(),
		ReadyMaxMS:            cfg.Round.ReadyMax.Milliseconds(),
		ReactionDelayMS:       cfg.Round.ReactionDelay.Milliseconds(),
		StrikeMS:              cfg.Round.StrikeDuration.Milliseconds(),
		ZoneRadius:            cfg.Zone.Radius,
		RequiredOpportunities: cfg.Opportunity.Required,
		WindowMS:              cfg.Opportunity.Window.Milliseconds(),
		SSHCommand:            sshCommand(cfg.Web.DisplayHost, cfg.SSH.Port),
	}
}

func sshCommand(host, port string) string {
	if port == "" || port == "22" {
		return "ssh " + host
	}
	return fmt.Sprintf("ssh -p %s %s", port, host)
}

// Server is the landing page HTTP server.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New creates a server listening on addr.
func New(addr string, rules Rules, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(rules, logger),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter returns the landing page routes.
func NewRouter(rules Rules, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", handleIndex(rules, logger))
	r.Get("/rules", handleRules(rules))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// Run serves until ctx is done or Shutdown is called. Cancelling ctx shuts the
// server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("web server listening", "addr", ln.Addr().String())

	served := make(chan error, 1)
	go func() {
		served <- s.srv.Serve(ln)
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		if err := s.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		<-served
		return nil
	}
}

// Shutdown stops the server, waiting up to ten seconds for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func handleIndex(rules Rules, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTmpl.Execute(w, rules); err != nil {
			logger.Error("rendering index", "error", err)
		}
	}
}

func handleRules(rules Rules) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, rules)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
