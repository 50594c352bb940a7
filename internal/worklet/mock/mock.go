package mock

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/yungbote/worklet-invoker/internal/worklet"
)

type Options struct {
	// FailurePercent is the chance, 0..100, that an invoke reports failure.
	FailurePercent int
	// MaxLatencyMs bounds the simulated latency: each call draws n in [0, MaxLatencyMs).
	MaxLatencyMs int
	// SleepPerUnit is how long each unit of n actually sleeps. Zero disables sleeping.
	SleepPerUnit time.Duration
	// Seed makes the random source deterministic; zero seeds from the clock.
	Seed uint64
}

// Engine is an in-process stand-in for a deployed worklet. It scales every
// input element by 2/3 and fails a configurable share of calls.
type Engine struct {
	opts Options

	mu  sync.Mutex
	rng *rand.Rand
}

func New(opts Options) *Engine {
	if opts.MaxLatencyMs <= 0 {
		opts.MaxLatencyMs = 100
	}
	opts.FailurePercent = min(max(opts.FailurePercent, 0), 100)
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Engine{
		opts: opts,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (e *Engine) Invoke(ctx context.Context, req worklet.Request) worklet.Result {
	latency, fail, msgIdx := e.draw()

	if e.opts.SleepPerUnit > 0 && latency > 0 {
		t := time.NewTimer(time.Duration(latency) * e.opts.SleepPerUnit)
		select {
		case <-ctx.Done():
			t.Stop()
			return worklet.Failed(worklet.KindTransport, ctx.Err())
		case <-t.C:
		}
	}

	if fail {
		return worklet.Succeeded(worklet.Outcome{
			Output:    []int64{},
			Success:   false,
			LatencyMs: int64(latency),
			ErrorLog:  failureMessage(msgIdx, req.WorkletInput.ModelID),
		})
	}
	return worklet.Succeeded(worklet.Outcome{
		Output:    Scale(req.WorkletInput.Input),
		Success:   true,
		LatencyMs: int64(latency),
	})
}

func (e *Engine) draw() (latency int, fail bool, msgIdx int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	latency = e.rng.IntN(e.opts.MaxLatencyMs)
	fail = e.opts.FailurePercent > e.rng.IntN(100)
	msgIdx = e.rng.IntN(3)
	return latency, fail, msgIdx
}

func failureMessage(idx int, modelID string) string {
	switch idx {
	case 0:
		return "There was a Network error while calling the model"
	case 1:
		return fmt.Sprintf("Model %s is not deployed", modelID)
	default:
		return fmt.Sprintf("Model %s does not exist", modelID)
	}
}

// Scale maps every element x to x*2/3, truncated toward zero. The split form
// does not overflow for any int64.
func Scale(in []int64) []int64 {
	out := make([]int64, len(in))
	for i, x := range in {
		out[i] = x/3*2 + x%3*2/3
	}
	return out
}
