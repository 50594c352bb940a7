package app

import (
	"github.com/yungbote/worklet-invoker/internal/config"
	httpserver "github.com/yungbote/worklet-invoker/internal/http"
	"github.com/yungbote/worklet-invoker/internal/observability"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg *config.Config, h Handlers, metrics *observability.Metrics) *httpserver.Server {
	log.Info("Wiring router...")
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		InvokeHandler:   h.Invoke,
		MetricsHandler:  h.Metrics,
		GraphQLHandler:  h.GraphQL,
		HealthHandler:   h.Health,
	}, cfg.HTTP)
}
