// README: API gateway; wraps the router with CORS and owns the HTTP server lifecycle.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
)

type Server struct {
	srv *http.Server
}

func NewServer(addr string, corsOrigins []string, deps RouterDeps) *Server {
	deps.Origins = corsOrigins
	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           c.Handler(NewRouter(deps)),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
