package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yungbote/worklet-invoker/internal/config"
	"github.com/yungbote/worklet-invoker/internal/worklet"
)

const maxResponseBytes = 16 << 20

// Endpoint posts invoke requests to a remote worklet over HTTP.
type Endpoint struct {
	url           string
	authorization string
	timeout       time.Duration

	httpClient *http.Client
}

func New(cfg config.WorkletConfig) (*Endpoint, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("remote worklet: url required")
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Endpoint{
		url:           url,
		authorization: strings.TrimSpace(cfg.Authorization),
		timeout:       cfg.Timeout.Duration,
		httpClient:    &http.Client{Transport: otelhttp.NewTransport(tr)},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg config.WorkletConfig, httpClient *http.Client) (*Endpoint, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		e.httpClient = httpClient
	}
	return e, nil
}

// wireResponse mirrors the downstream body. Pointers separate "absent" from
// zero so defaults can be applied explicitly.
type wireResponse struct {
	LatencyMs     *float64 `json:"latency_ms"`
	Success       *bool    `json:"success"`
	ErrorLog      *string  `json:"error_log"`
	WorkletOutput []int64  `json:"worklet_output"`
}

func (e *Endpoint) Invoke(ctx context.Context, req worklet.Request) worklet.Result {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return worklet.Failed(worklet.KindTransport, err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, &buf)
	if err != nil {
		return worklet.Failed(worklet.KindTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if e.authorization != "" {
		httpReq.Header.Set("Authorization", e.authorization)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return worklet.Failed(worklet.KindTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return worklet.Result{Failure: &worklet.Failure{
			Kind:       worklet.KindStatus,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return worklet.Failed(worklet.KindTransport, err)
	}
	return decodeOutcome(raw)
}

func decodeOutcome(raw []byte) worklet.Result {
	var wire *wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return worklet.Failed(worklet.KindDecode, err)
	}
	if wire == nil {
		return worklet.Failed(worklet.KindSchema, errors.New("empty response body"))
	}
	if wire.LatencyMs == nil {
		return worklet.Failed(worklet.KindSchema, errors.New("latency_ms is required"))
	}
	if *wire.LatencyMs < 0 {
		return worklet.Failed(worklet.KindSchema, errors.New("latency_ms must not be negative"))
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if *wire.LatencyMs >= float64(math.MaxInt64) {
		return worklet.Failed(worklet.KindSchema, fmt.Errorf("latency_ms out of range: %g", *wire.LatencyMs))
	}

	out := worklet.Outcome{
		Output:    wire.WorkletOutput,
		Success:   true,
		LatencyMs: int64(*wire.LatencyMs),
	}
	if out.Output == nil {
		out.Output = []int64{}
	}
	if wire.Success != nil {
		out.Success = *wire.Success
	}
	if wire.ErrorLog != nil {
		out.ErrorLog = *wire.ErrorLog
	}
	return worklet.Succeeded(out)
}
