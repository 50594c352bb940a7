package app

import (
	"github.com/yungbote/worklet-invoker/internal/observability"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/services"
	"github.com/yungbote/worklet-invoker/internal/worklet"
)

type Services struct {
	Invoke  services.InvokeService
	Metrics services.MetricsService
}

func wireServices(log *logger.Logger, r Repos, endpoint worklet.Endpoint, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Invoke:  services.NewInvokeService(log, endpoint, r.Invocation, metrics),
		Metrics: services.NewMetricsService(log, r.Invocation),
	}
}
