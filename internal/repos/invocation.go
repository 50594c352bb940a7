package repos

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/yungbote/worklet-invoker/internal/domain"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

// InvocationRepo is the metrics store: an append-only invocation log plus
// per-model running aggregates kept in step with it.
type InvocationRepo interface {
	RecordInvocation(ctx context.Context, in domain.InvocationInput) domain.InvocationRecord
	GetInvocationHistory(ctx context.Context, q domain.HistoryQuery) []domain.InvocationRecord
	GetModelStats(ctx context.Context, modelID *string) map[string]domain.ModelStats
	GetTotalInvocations(ctx context.Context) int
}

type InvocationRepoOption func(*invocationRepo)

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) InvocationRepoOption {
	return func(r *invocationRepo) {
		if now != nil {
			r.now = now
		}
	}
}

type invocationRepo struct {
	mu      sync.RWMutex
	history []domain.InvocationRecord
	stats   map[string]*domain.ModelStats
	nextID  int64
	now     func() time.Time
	log     *logger.Logger
}

func NewInvocationRepo(baseLog *logger.Logger, opts ...InvocationRepoOption) InvocationRepo {
	r := &invocationRepo{
		stats:  make(map[string]*domain.ModelStats),
		nextID: 1,
		now:    time.Now,
		log:    baseLog.With("repo", "InvocationRepo"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *invocationRepo) RecordInvocation(ctx context.Context, in domain.InvocationInput) domain.InvocationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := domain.InvocationRecord{
		ID:         r.nextID,
		ModelID:    in.ModelID,
		Timestamp:  r.now().UTC(),
		Success:    in.Success,
		LatencyMs:  in.LatencyMs,
		ErrorLog:   in.ErrorLog,
		InputSize:  in.InputSize,
		OutputSize: in.OutputSize,
	}
	r.nextID++
	r.history = append(r.history, rec)

	st, ok := r.stats[rec.ModelID]
	if !ok {
		st = domain.NewModelStats(rec.ModelID)
		r.stats[rec.ModelID] = st
	}
	st.Observe(rec)

	r.log.Debug("invocation recorded",
		"invocation_id", rec.ID,
		"model_id", rec.ModelID,
		"success", rec.Success,
		"latency_ms", rec.LatencyMs,
	)
	return rec
}

func (r *invocationRepo) GetInvocationHistory(ctx context.Context, q domain.HistoryQuery) []domain.InvocationRecord {
	r.mu.RLock()
	matched := make([]domain.InvocationRecord, 0, len(r.history))
	for _, rec := range r.history {
		if q.ModelID != nil && rec.ModelID != *q.ModelID {
			continue
		}
		matched = append(matched, rec)
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, newestFirst)

	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.InvocationRecord{}
	}
	end := len(matched)
	if q.Limit != nil && *q.Limit >= 0 && offset+*q.Limit < end {
		end = offset + *q.Limit
	}
	return matched[offset:end]
}

// newestFirst orders by timestamp descending; equal timestamps fall back to
// the later id first.
func newestFirst(a, b domain.InvocationRecord) int {
	if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	default:
		return 0
	}
}

func (r *invocationRepo) GetModelStats(ctx context.Context, modelID *string) map[string]domain.ModelStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if modelID != nil {
		out := make(map[string]domain.ModelStats, 1)
		if st, ok := r.stats[*modelID]; ok {
			out[*modelID] = *st
		}
		return out
	}

	out := make(map[string]domain.ModelStats, len(r.stats))
	for id, st := range r.stats {
		out[id] = *st
	}
	return out
}

func (r *invocationRepo) GetTotalInvocations(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history)
}
