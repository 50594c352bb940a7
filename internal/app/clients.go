package app

import (
	"fmt"

	"github.com/yungbote/worklet-invoker/internal/config"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/worklet"
	"github.com/yungbote/worklet-invoker/internal/worklet/mock"
	"github.com/yungbote/worklet-invoker/internal/worklet/remote"
)

func newWorkletEndpoint(log *logger.Logger, cfg config.WorkletConfig) (worklet.Endpoint, error) {
	switch cfg.Type {
	case config.WorkletTypeMock:
		log.Warn("using in-process mock worklet", "failure_percent", cfg.Mock.FailurePercent)
		return mock.New(mock.Options{
			FailurePercent: cfg.Mock.FailurePercent,
			MaxLatencyMs:   cfg.Mock.MaxLatencyMs,
			SleepPerUnit:   cfg.Mock.SleepPerUnit.Duration,
		}), nil
	case config.WorkletTypeHTTP, "":
		ep, err := remote.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("init worklet client: %w", err)
		}
		return ep, nil
	default:
		return nil, fmt.Errorf("unsupported worklet type %q", cfg.Type)
	}
}
