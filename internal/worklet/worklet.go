package worklet

import (
	"context"
	"fmt"
)

type Input struct {
	ModelID string  `json:"model_id" binding:"required"`
	Input   []int64 `json:"input" binding:"required"`
}

// Request is the invoke contract shared by the public /invoke route and every
// downstream endpoint.
type Request struct {
	WorkletInput Input `json:"worklet_input" binding:"required"`
}

// Outcome is a structurally valid downstream response. Success=false means
// the worklet itself reported a failure.
type Outcome struct {
	Output    []int64 `json:"worklet_output"`
	Success   bool    `json:"success"`
	LatencyMs int64   `json:"latency_ms"`
	ErrorLog  string  `json:"error_log"`
}

type Kind int

const (
	KindOK Kind = iota
	KindDownstream
	KindTransport
	KindStatus
	KindDecode
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindDownstream:
		return "downstream"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindSchema:
		return "schema"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is a call that produced no usable outcome.
type Failure struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (f *Failure) Error() string {
	if f == nil {
		return "worklet failure"
	}
	switch f.Kind {
	case KindStatus:
		if f.Body == "" {
			return fmt.Sprintf("worklet http error: status=%d", f.StatusCode)
		}
		return fmt.Sprintf("worklet http error: status=%d body=%s", f.StatusCode, f.Body)
	case KindTransport:
		return fmt.Sprintf("worklet transport error: %v", f.Err)
	case KindDecode:
		return fmt.Sprintf("worklet response decode error: %v", f.Err)
	case KindSchema:
		return fmt.Sprintf("worklet response invalid: %v", f.Err)
	default:
		if f.Err != nil {
			return f.Err.Error()
		}
		return "worklet failure: " + f.Kind.String()
	}
}

func (f *Failure) Unwrap() error { return f.Err }

// Result holds exactly one of Outcome or Failure.
type Result struct {
	Outcome *Outcome
	Failure *Failure
}

func Succeeded(o Outcome) Result { return Result{Outcome: &o} }

func Failed(kind Kind, err error) Result {
	return Result{Failure: &Failure{Kind: kind, Err: err}}
}

func (r Result) Kind() Kind {
	switch {
	case r.Failure != nil:
		return r.Failure.Kind
	case r.Outcome == nil:
		return KindSchema
	case !r.Outcome.Success:
		return KindDownstream
	default:
		return KindOK
	}
}

// Endpoint is a remote unit of compute that can be invoked.
type Endpoint interface {
	Invoke(ctx context.Context, req Request) Result
}
