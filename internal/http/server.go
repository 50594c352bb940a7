package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worklet-invoker/internal/config"
)

type Server struct {
	Engine *gin.Engine
	srv    *http.Server
	grace  time.Duration
}

func NewServer(cfg RouterConfig, httpCfg config.HTTPConfig) *Server {
	engine := NewRouter(cfg)
	return &Server{
		Engine: engine,
		srv: &http.Server{
			Addr:              httpCfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: httpCfg.ReadHeaderTimeout.Duration,
			IdleTimeout:       httpCfg.IdleTimeout.Duration,
		},
		grace: httpCfg.ShutdownTimeout.Duration,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// the configured shutdown timeout.
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

	grace := s.grace
	if grace <= 0 {
		grace = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
