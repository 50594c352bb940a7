package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/worklet-invoker/internal/http/handlers"
	httpMW "github.com/yungbote/worklet-invoker/internal/http/middleware"
	"github.com/yungbote/worklet-invoker/internal/observability"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	ServiceName     string
	CORSOrigins     []string
	MaxRequestBytes int64

	InvokeHandler  *httpH.InvokeHandler
	MetricsHandler *httpH.MetricsHandler
	GraphQLHandler *httpH.GraphQLHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recover(cfg.Log))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.LimitRequestBody(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Index)
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	// Invocation proxy
	if cfg.InvokeHandler != nil {
		r.POST("/invoke", cfg.InvokeHandler.Invoke)
	}

	// Metrics
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", cfg.MetricsHandler.Exposition)
		r.GET("/metrics/history", cfg.MetricsHandler.History)
		r.GET("/metrics/stats", cfg.MetricsHandler.Stats)
	}

	// GraphQL
	if cfg.GraphQLHandler != nil {
		r.POST("/graphql", cfg.GraphQLHandler.Query)
		r.GET("/graphql", cfg.GraphQLHandler.Playground)
	}

	return r
}
