// Package server exposes the extraction and scheduling services over HTTP.
package server

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kodwo/billminder/internal/extraction"
	"github.com/kodwo/billminder/internal/reminder"
)

// IDGenerator generates unique references for uploaded documents
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return time.Now().UTC().Format("20060102150405.000000000")
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Server handles HTTP requests for bill extraction and reminders
type Server struct {
	extractor   *extraction.Service
	reminders   *reminder.Service
	storage     extraction.Storage
	history     *extraction.History
	basicAuth   BasicAuth
	idGenerator IDGenerator
	timeSource  TimeSource
	mux         *http.ServeMux
}

// NewServer creates a new Server with default mux, ID generator, and time
// source
func NewServer(extractor *extraction.Service, reminders *reminder.Service, storage extraction.Storage, history *extraction.History, basicAuth BasicAuth) *Server {
	return NewServerWithDeps(extractor, reminders, storage, history, basicAuth,
		&defaultIDGenerator{}, &defaultTimeSource{}, http.NewServeMux())
}

// NewServerWithDeps creates a new Server with custom dependencies for testing
func NewServerWithDeps(extractor *extraction.Service, reminders *reminder.Service, storage extraction.Storage, history *extraction.History, basicAuth BasicAuth, idGen IDGenerator, timeSrc TimeSource, mux *http.ServeMux) *Server {
	s := &Server{
		extractor:   extractor,
		reminders:   reminders,
		storage:     storage,
		history:     history,
		basicAuth:   basicAuth,
		idGenerator: idGen,
		timeSource:  timeSrc,
		mux:         mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers and answers preflight requests
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="billminder"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/documents", s.requireAuth(s.handleUploadDocument))
	s.mux.HandleFunc("POST /api/extract", s.requireAuth(s.handleExtract))
	s.mux.HandleFunc("GET /api/extractions", s.requireAuth(s.handleListExtractions))
	s.mux.HandleFunc("GET /api/reminders/{user}/{bill}", s.requireAuth(s.handleGetPlan))
	s.mux.HandleFunc("POST /api/reminders", s.requireAuth(s.handleSchedule))
	s.mux.HandleFunc("POST /api/paylinks", s.requireAuth(s.handleCreatePaylink))
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
