package app

import (
	"fmt"

	"github.com/yungbote/worklet-invoker/internal/config"
	"github.com/yungbote/worklet-invoker/internal/graph"
	httpH "github.com/yungbote/worklet-invoker/internal/http/handlers"
	"github.com/yungbote/worklet-invoker/internal/observability"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

type Handlers struct {
	Invoke  *httpH.InvokeHandler
	Metrics *httpH.MetricsHandler
	GraphQL *httpH.GraphQLHandler
	Health  *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, r Repos, s Services, metrics *observability.Metrics) (Handlers, error) {
	log.Info("Wiring handlers...")
	schema, err := graph.NewSchema(log, r.Organization, r.Model)
	if err != nil {
		return Handlers{}, fmt.Errorf("parse graphql schema: %w", err)
	}
	return Handlers{
		Invoke:  httpH.NewInvokeHandler(s.Invoke),
		Metrics: httpH.NewMetricsHandler(s.Metrics, metrics.Handler(), cfg.Metrics.DefaultHistoryLimit),
		GraphQL: httpH.NewGraphQLHandler(schema),
		Health:  httpH.NewHealthHandler(),
	}, nil
}
