package repos

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/worklet-invoker/internal/domain"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func newTestInvocationRepo(step time.Duration) InvocationRepo {
	clk := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: step}
	return NewInvocationRepo(logger.NewNop(), WithClock(clk.Now))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestRecordInvocation_StatsScenario(t *testing.T) {
	ctx := context.Background()
	repo := newTestInvocationRepo(time.Millisecond)

	repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: "m1", Success: true, LatencyMs: 50})
	repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: "m1", Success: false, LatencyMs: 150, ErrorLog: "boom"})

	stats := repo.GetModelStats(ctx, strPtr("m1"))
	require.Len(t, stats, 1)
	st := stats["m1"]
	require.EqualValues(t, 2, st.TotalInvocations)
	require.EqualValues(t, 1, st.SuccessfulInvocations)
	require.EqualValues(t, 1, st.FailedInvocations)
	require.InDelta(t, 100.0, st.AverageLatencyMs, 1e-9)
	require.EqualValues(t, 50, st.MinLatencyMs)
	require.EqualValues(t, 150, st.MaxLatencyMs)
	require.InDelta(t, 50.0, st.SuccessRate(), 1e-9)
	require.InDelta(t, 50.0, st.FailureRate(), 1e-9)
	require.NotNil(t, st.LastInvocation)
}

func TestRecordInvocation_AggregatesMatchHistory(t *testing.T) {
	ctx := context.Background()
	repo := newTestInvocationRepo(time.Millisecond)
	rng := rand.New(rand.NewPCG(1, 2))

	type agg struct {
		n, sum, min, max int64
	}
	want := map[string]*agg{}
	ids := []string{"a", "b", "c"}
	for i := 0; i < 300; i++ {
		id := ids[rng.IntN(len(ids))]
		lat := int64(rng.IntN(5000))
		repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: id, Success: rng.IntN(2) == 0, LatencyMs: lat})

		a, ok := want[id]
		if !ok {
			a = &agg{min: lat, max: lat}
			want[id] = a
		}
		a.n++
		a.sum += lat
		a.min = min(a.min, lat)
		a.max = max(a.max, lat)
	}

	all := repo.GetModelStats(ctx, nil)
	require.Len(t, all, len(want))
	for id, a := range want {
		st := all[id]
		require.Equal(t, a.n, st.TotalInvocations, id)
		require.Equal(t, a.n, st.SuccessfulInvocations+st.FailedInvocations, id)
		require.InDelta(t, float64(a.sum)/float64(a.n), st.AverageLatencyMs, 1e-9, id)
		require.Equal(t, a.min, st.MinLatencyMs, id)
		require.Equal(t, a.max, st.MaxLatencyMs, id)

		hist := repo.GetInvocationHistory(ctx, domain.HistoryQuery{ModelID: strPtr(id)})
		require.Len(t, hist, int(st.TotalInvocations), id)
	}
	require.Equal(t, 300, repo.GetTotalInvocations(ctx))
}

func TestGetInvocationHistory_OrderFilterPaging(t *testing.T) {
	ctx := context.Background()
	repo := newTestInvocationRepo(time.Second)

	for i := 0; i < 10; i++ {
		id := "even"
		if i%2 == 1 {
			id = "odd"
		}
		repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: id, Success: true, LatencyMs: int64(i)})
	}

	all := repo.GetInvocationHistory(ctx, domain.HistoryQuery{})
	require.Len(t, all, 10)
	for i := 1; i < len(all); i++ {
		require.False(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}
	require.EqualValues(t, 10, all[0].ID)

	odd := repo.GetInvocationHistory(ctx, domain.HistoryQuery{ModelID: strPtr("odd")})
	require.Len(t, odd, 5)
	for _, rec := range odd {
		require.Equal(t, "odd", rec.ModelID)
	}

	page := repo.GetInvocationHistory(ctx, domain.HistoryQuery{Limit: intPtr(3), Offset: 2})
	require.Len(t, page, 3)
	require.Equal(t, all[2:5], page)

	tail := repo.GetInvocationHistory(ctx, domain.HistoryQuery{Limit: intPtr(100), Offset: 8})
	require.Equal(t, all[8:], tail)

	empty := repo.GetInvocationHistory(ctx, domain.HistoryQuery{Offset: 10})
	require.NotNil(t, empty)
	require.Empty(t, empty)

	zero := repo.GetInvocationHistory(ctx, domain.HistoryQuery{Limit: intPtr(0)})
	require.Empty(t, zero)

	require.Equal(t, 10, repo.GetTotalInvocations(ctx))
}

func TestGetInvocationHistory_TiesNewestIDFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestInvocationRepo(0)

	for i := 0; i < 4; i++ {
		repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: "m", Success: true})
	}

	hist := repo.GetInvocationHistory(ctx, domain.HistoryQuery{})
	require.Len(t, hist, 4)
	for i, rec := range hist {
		require.EqualValues(t, 4-i, rec.ID)
	}
}

func TestGetModelStats_UnknownModel(t *testing.T) {
	ctx := context.Background()
	repo := newTestInvocationRepo(time.Millisecond)
	repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: "m1", Success: true, LatencyMs: 1})

	stats := repo.GetModelStats(ctx, strPtr("unknown"))
	require.NotNil(t, stats)
	require.Empty(t, stats)
}

func TestGetModelStats_ReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newTestInvocationRepo(time.Millisecond)
	repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: "m1", Success: true, LatencyMs: 10})

	before := repo.GetModelStats(ctx, nil)["m1"]
	repo.RecordInvocation(ctx, domain.InvocationInput{ModelID: "m1", Success: true, LatencyMs: 20})

	require.EqualValues(t, 1, before.TotalInvocations)
	require.EqualValues(t, 2, repo.GetModelStats(ctx, nil)["m1"].TotalInvocations)
}
