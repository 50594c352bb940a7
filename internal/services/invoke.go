package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/worklet-invoker/internal/domain"
	"github.com/yungbote/worklet-invoker/internal/observability"
	"github.com/yungbote/worklet-invoker/internal/platform/apierr"
	"github.com/yungbote/worklet-invoker/internal/platform/ctxutil"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/repos"
	"github.com/yungbote/worklet-invoker/internal/worklet"
)

// InvokeService proxies a request to the configured worklet and records
// exactly one invocation per call, whatever the outcome.
type InvokeService interface {
	Invoke(ctx context.Context, req worklet.Request) (*worklet.Outcome, error)
}

type invokeService struct {
	log         *logger.Logger
	endpoint    worklet.Endpoint
	invocations repos.InvocationRepo
	metrics     *observability.Metrics
	tracer      trace.Tracer
	now         func() time.Time
}

func NewInvokeService(log *logger.Logger, endpoint worklet.Endpoint, invocations repos.InvocationRepo, metrics *observability.Metrics) InvokeService {
	return &invokeService{
		log:         log.With("service", "InvokeService"),
		endpoint:    endpoint,
		invocations: invocations,
		metrics:     metrics,
		tracer:      observability.Tracer(),
		now:         time.Now,
	}
}

func (s *invokeService) Invoke(ctx context.Context, req worklet.Request) (*worklet.Outcome, error) {
	modelID := req.WorkletInput.ModelID

	s.metrics.InvocationStarted(modelID)
	defer s.metrics.InvocationFinished(modelID)

	ctx, span := s.tracer.Start(ctx, "worklet.invoke", trace.WithAttributes(
		attribute.String("worklet.model_id", modelID),
		attribute.Int("worklet.input_size", len(req.WorkletInput.Input)),
	))
	defer span.End()

	start := s.now()
	res := s.endpoint.Invoke(ctx, req)
	elapsed := s.now().Sub(start)

	in := domain.InvocationInput{
		ModelID:   modelID,
		LatencyMs: elapsed.Milliseconds(),
		InputSize: len(req.WorkletInput.Input),
	}
	switch {
	case res.Failure != nil:
		in.Success = false
		in.ErrorLog = res.Failure.Error()
	case res.Outcome != nil:
		in.Success = res.Outcome.Success
		in.ErrorLog = res.Outcome.ErrorLog
		in.OutputSize = len(res.Outcome.Output)
	default:
		res = worklet.Failed(worklet.KindSchema, fmt.Errorf("endpoint returned neither outcome nor failure"))
		in.ErrorLog = res.Failure.Error()
	}

	rec := s.invocations.RecordInvocation(ctx, in)
	s.metrics.ObserveInvocation(modelID, rec.Success, elapsed)
	if st, ok := s.invocations.GetModelStats(ctx, &modelID)[modelID]; ok {
		s.metrics.SetModelStats(modelID, st.TotalInvocations, st.SuccessRate())
	}

	span.SetAttributes(
		attribute.Int64("worklet.invocation_id", rec.ID),
		attribute.Bool("worklet.success", rec.Success),
		attribute.String("worklet.result_kind", res.Kind().String()),
	)

	if res.Failure != nil {
		span.RecordError(res.Failure)
		span.SetStatus(codes.Error, res.Failure.Kind.String())
		s.log.Warn("worklet invoke failed",
			"model_id", modelID,
			"invocation_id", rec.ID,
			"kind", res.Failure.Kind.String(),
			"error", res.Failure.Error(),
			"request_id", ctxutil.RequestID(ctx),
		)
		return nil, apierr.Internal("worklet_invoke_failed", res.Failure)
	}

	if !res.Outcome.Success {
		s.log.Info("worklet reported failure",
			"model_id", modelID,
			"invocation_id", rec.ID,
			"error_log", res.Outcome.ErrorLog,
			"request_id", ctxutil.RequestID(ctx),
		)
	}
	return res.Outcome, nil
}
