package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/worklet-invoker/internal/config"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/worklet"
	"github.com/yungbote/worklet-invoker/internal/worklet/mock"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func newEndpoint(t *testing.T, auth string, fn roundTripperFunc) *Endpoint {
	t.Helper()
	e, err := NewWithHTTPClient(config.WorkletConfig{
		Type:          config.WorkletTypeHTTP,
		URL:           "http://worklet/invoke",
		Authorization: auth,
	}, &http.Client{Transport: fn})
	require.NoError(t, err)
	return e
}

func testRequest() worklet.Request {
	return worklet.Request{WorkletInput: worklet.Input{ModelID: "m1", Input: []int64{3, 6, 9}}}
}

func TestInvoke_SendsContractAndParsesOutcome(t *testing.T) {
	e := newEndpoint(t, "Api-Key k", func(req *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, req.Method)
		require.Equal(t, "/invoke", req.URL.Path)
		require.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.Equal(t, "Api-Key k", req.Header.Get("Authorization"))

		var in worklet.Request
		require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		require.Equal(t, testRequest(), in)

		return jsonResponse(http.StatusOK, `{"latency_ms": 12, "success": true, "error_log": "", "worklet_output": [2, 4, 6]}`), nil
	})

	res := e.Invoke(context.Background(), testRequest())
	require.Equal(t, worklet.KindOK, res.Kind())
	require.Nil(t, res.Failure)
	require.Equal(t, worklet.Outcome{Output: []int64{2, 4, 6}, Success: true, LatencyMs: 12}, *res.Outcome)
}

func TestInvoke_OmitsAuthorizationWhenUnset(t *testing.T) {
	e := newEndpoint(t, "", func(req *http.Request) (*http.Response, error) {
		_, ok := req.Header["Authorization"]
		require.False(t, ok)
		return jsonResponse(http.StatusOK, `{"latency_ms": 1}`), nil
	})

	res := e.Invoke(context.Background(), testRequest())
	require.Equal(t, worklet.KindOK, res.Kind())
}

func TestInvoke_AppliesDefaults(t *testing.T) {
	e := newEndpoint(t, "", func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"latency_ms": 7.9, "error_log": null}`), nil
	})

	res := e.Invoke(context.Background(), testRequest())
	require.NotNil(t, res.Outcome)
	require.True(t, res.Outcome.Success)
	require.EqualValues(t, 7, res.Outcome.LatencyMs)
	require.Empty(t, res.Outcome.ErrorLog)
	require.NotNil(t, res.Outcome.Output)
	require.Empty(t, res.Outcome.Output)
}

func TestInvoke_DownstreamReportedFailure(t *testing.T) {
	e := newEndpoint(t, "", func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"latency_ms": 40, "success": false, "error_log": "Model m1 is not deployed", "worklet_output": []}`), nil
	})

	res := e.Invoke(context.Background(), testRequest())
	require.Equal(t, worklet.KindDownstream, res.Kind())
	require.Equal(t, "Model m1 is not deployed", res.Outcome.ErrorLog)
}

func TestInvoke_Failures(t *testing.T) {
	cases := []struct {
		name string
		rt   roundTripperFunc
		kind worklet.Kind
	}{
		{
			name: "transport",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			kind: worklet.KindTransport,
		},
		{
			name: "non-2xx",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadGateway, `upstream down`), nil
			},
			kind: worklet.KindStatus,
		},
		{
			name: "malformed body",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"latency_ms":`), nil
			},
			kind: worklet.KindDecode,
		},
		{
			name: "wrong output type",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"latency_ms": 1, "worklet_output": "nope"}`), nil
			},
			kind: worklet.KindDecode,
		},
		{
			name: "missing latency",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"success": true}`), nil
			},
			kind: worklet.KindSchema,
		},
		{
			name: "latency beyond int64",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"latency_ms": 1e19}`), nil
			},
			kind: worklet.KindSchema,
		},
		{
			name: "latency at 2^63",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"latency_ms": 9223372036854775808}`), nil
			},
			kind: worklet.KindSchema,
		},
		{
			name: "null body",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `null`), nil
			},
			kind: worklet.KindSchema,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEndpoint(t, "", tc.rt)
			res := e.Invoke(context.Background(), testRequest())
			require.Nil(t, res.Outcome)
			require.NotNil(t, res.Failure)
			require.Equal(t, tc.kind, res.Kind())
			require.NotEmpty(t, res.Failure.Error())
		})
	}
}

func TestInvoke_StatusFailureCarriesBody(t *testing.T) {
	e := newEndpoint(t, "", func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, "busy\n"), nil
	})

	res := e.Invoke(context.Background(), testRequest())
	require.Equal(t, http.StatusServiceUnavailable, res.Failure.StatusCode)
	require.Equal(t, "worklet http error: status=503 body=busy", res.Failure.Error())
}

func TestInvoke_TimeoutIsTransportFailure(t *testing.T) {
	e, err := NewWithHTTPClient(config.WorkletConfig{
		URL:     "http://worklet/invoke",
		Timeout: config.Duration{Duration: 20 * time.Millisecond},
	}, &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})})
	require.NoError(t, err)

	res := e.Invoke(context.Background(), testRequest())
	require.Equal(t, worklet.KindTransport, res.Kind())
	require.ErrorIs(t, res.Failure, context.DeadlineExceeded)
}

func TestInvoke_AgainstMockServer(t *testing.T) {
	eng := mock.New(mock.Options{FailurePercent: 0, MaxLatencyMs: 5, Seed: 7})
	srv := httptest.NewServer(mock.NewHandler(eng, logger.NewNop()))
	defer srv.Close()

	e, err := New(config.WorkletConfig{URL: srv.URL + "/invoke"})
	require.NoError(t, err)

	res := e.Invoke(context.Background(), testRequest())
	require.Equal(t, worklet.KindOK, res.Kind())
	require.Equal(t, []int64{2, 4, 6}, res.Outcome.Output)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(config.WorkletConfig{})
	require.Error(t, err)
}
