package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/worklet-invoker/internal/domain"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/repos"
)

var ErrStatsNotFound = errors.New("no stats found")

// DefaultHistoryLimit applies when a caller does not choose a limit at all.
const DefaultHistoryLimit = 100

type HistoryParams struct {
	ModelID *string
	Limit   *int
	Offset  int
}

type HistoryPage struct {
	History    []domain.InvocationRecord `json:"history"`
	TotalCount int                       `json:"total_count"`
	Offset     int                       `json:"offset"`
	Limit      *int                      `json:"limit"`
}

type MetricsService interface {
	History(ctx context.Context, p HistoryParams) HistoryPage
	Stats(ctx context.Context, modelID *string) (map[string]domain.ModelStats, error)
}

type metricsService struct {
	log         *logger.Logger
	invocations repos.InvocationRepo
}

func NewMetricsService(log *logger.Logger, invocations repos.InvocationRepo) MetricsService {
	return &metricsService{
		log:         log.With("service", "MetricsService"),
		invocations: invocations,
	}
}

// History returns one page of the log. TotalCount is the size of the whole
// log, not of the filtered set.
func (s *metricsService) History(ctx context.Context, p HistoryParams) HistoryPage {
	offset := max(p.Offset, 0)
	records := s.invocations.GetInvocationHistory(ctx, domain.HistoryQuery{
		ModelID: p.ModelID,
		Limit:   p.Limit,
		Offset:  offset,
	})
	return HistoryPage{
		History:    records,
		TotalCount: s.invocations.GetTotalInvocations(ctx),
		Offset:     offset,
		Limit:      p.Limit,
	}
}

func (s *metricsService) Stats(ctx context.Context, modelID *string) (map[string]domain.ModelStats, error) {
	stats := s.invocations.GetModelStats(ctx, modelID)
	if modelID != nil && len(stats) == 0 {
		return nil, fmt.Errorf("%w for model: %s", ErrStatsNotFound, *modelID)
	}
	return stats, nil
}
