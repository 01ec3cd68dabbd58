package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Server struct {
	Engine *gin.Engine
	srv    *http.Server

	writeTimeout time.Duration
}

func NewServer(cfg RouterConfig) *Server {
	longest := cfg.RequestTimeout
	for _, d := range cfg.RouteTimeouts {
		longest = max(longest, d)
	}
	return &Server{
		Engine:       NewRouter(cfg),
		writeTimeout: writeTimeoutFor(longest),
	}
}

// writeTimeoutFor leaves room for the slowest route to write its response
// after its context deadline fires. Zero disables the write timeout.
func writeTimeoutFor(longest time.Duration) time.Duration {
	if longest <= 0 {
		return 0
	}
	return longest + 5*time.Second
}

// Run serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Run(address string) error {
	s.srv = &http.Server{
		Addr:              address,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
