// Package server exposes the optimizer over a small authenticated REST API.
package server

import (
	"net/http"

	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// OptimizeFunc runs one optimization for an API request. The CLI wires in the
// real collaborators; tests substitute a fake.
type OptimizeFunc func(req OptimizeRequest) (*keywords.Population, error)

type Server struct {
	Optimize OptimizeFunc
	Username string
	Password string
	Version  string
}

func New(optimize OptimizeFunc, user, pass, version string) *Server {
	return &Server{
		Optimize: optimize,
		Username: user,
		Password: pass,
		Version:  version,
	}
}

// Handler builds the route table. Split from Start so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.basicAuth(s.handleHealth))
	mux.HandleFunc("POST /api/optimize", s.basicAuth(s.handleOptimize))
	return mux
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
