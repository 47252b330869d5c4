// Package web exposes the slot board and booking flow over HTTP for
// browser-based kiosks.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"turfkiosk/internal/config"
	"turfkiosk/internal/domain"
	"turfkiosk/internal/models"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const sessionCookieName = "kiosk_session"

// Server serves the kiosk JSON API.
type Server struct {
	cfg        config.KioskConfig
	sessions   config.SessionsConfig
	flow       domain.FlowManager
	facilities []models.Facility
	history    domain.HistoryArchive
	exportPath string
	limiter    *rateLimiter
	logger     *zerolog.Logger
	server     *http.Server
}

func NewServer(cfg config.KioskConfig, sessions config.SessionsConfig, flow domain.FlowManager, facilities []models.Facility, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	s := &Server{
		cfg:        cfg,
		sessions:   sessions,
		flow:       flow,
		facilities: facilities,
		limiter:    newRateLimiter(cfg.RateLimit),
		logger:     logger,
	}

	router := httprouter.New()
	router.GET("/healthz", s.handleHealth)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.GET("/api/facilities", s.handleFacilities)
	router.GET("/api/facilities/:id/sports", s.handleFacilitySports)
	router.GET("/api/history", s.handleHistory)
	router.POST("/api/history/export", s.handleHistoryExport)
	router.GET("/api/slots", s.withSession(s.handleSlots))
	router.GET("/api/board", s.withSession(s.handleBoard))
	router.POST("/api/select", s.withSession(s.handleSelect))
	router.POST("/api/book", s.withSession(s.handleBook))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.loggingMiddleware(corsHandler),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// EnableHistory attaches the booking log so the history endpoints
// start serving. Call before Start.
func (s *Server) EnableHistory(archive domain.HistoryArchive, exportPath string) {
	s.history = archive
	s.exportPath = exportPath
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("kiosk server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// withSession resolves the session cookie, setting one on first
// contact, and applies per-client rate limiting.
func (s *Server) withSession(next func(http.ResponseWriter, *http.Request, httprouter.Params, string)) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !s.limiter.allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		var cookieID string
		if c, err := r.Cookie(sessionCookieName); err == nil {
			cookieID = c.Value
		}

		sessionID := s.flow.EnsureSession(r.Context(), cookieID)
		if sessionID != cookieID {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   s.sessions.TTLSeconds,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next(w, r, ps, sessionID)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
