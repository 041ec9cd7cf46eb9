// Package bridge polls the rtl_433 WS90 HTTP bridge for the latest sample.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

const (
	DefaultURL     = "http://172.17.0.1:7890"
	DefaultTimeout = 5 * time.Second
	// The bridge serves one small JSON object; anything past this is cut.
	DefaultMaxBody = 8192

	DefaultBreakAfter    = 5
	DefaultBreakCooldown = 30 * time.Second

	msgInvalidJSON = "invalid JSON from ws90"
	msgNonJSON     = "non-200 from ws90 with non-JSON body"
)

type Config struct {
	URL     string
	Timeout time.Duration
	MaxBody int64
	// BreakAfter consecutive transport failures open the breaker, which then
	// skips requests for BreakCooldown. Negative disables the breaker.
	BreakAfter    int
	BreakCooldown time.Duration
}

type Client struct {
	url     string
	maxBody int64
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	c := &Client{
		url:     url,
		maxBody: maxBody,
		client:  &http.Client{Timeout: timeout},
	}
	if cfg.BreakAfter >= 0 {
		c.circuit = newBreaker(cfg.BreakAfter, cfg.BreakCooldown)
	}
	return c
}

func newBreaker(after int, cooldown time.Duration) *gobreaker.CircuitBreaker {
	if after == 0 {
		after = DefaultBreakAfter
	}
	if cooldown <= 0 {
		cooldown = DefaultBreakCooldown
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ws90-bridge",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(after)
		},
	})
}

func (c *Client) URL() string {
	return c.url
}

// Result is the outcome of one poll. Reading is set only when the bridge
// answered 200 with a decodable object.
type Result struct {
	Reading *types.RawReading
	Status  types.PollStatus
}

// upstreamError is the body the bridge sends with non-200 responses.
type upstreamError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Poll issues a single GET. It never retries and never returns an error:
// every failure is folded into the returned status.
func (c *Client) Poll(ctx context.Context, now time.Time) Result {
	st := types.PollStatus{PolledTS: now.Unix()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{Status: transportFailure(st, err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return Result{Status: transportFailure(st, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return Result{Status: transportFailure(st, fmt.Errorf("read body: %w", err))}
	}

	st.Reachable = true
	st.HTTPStatus = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		return Result{Status: upstreamFailure(st, body)}
	}

	reading, err := DecodeReading(body)
	if err != nil {
		st.Kind = types.KindParse
		st.Code = types.KindParse.String()
		st.Message = msgInvalidJSON
		return Result{Status: st}
	}

	st.UpstreamOK = true
	return Result{Reading: &reading, Status: st}
}

// do sends req through the breaker. Only transport errors count against the
// bridge; any HTTP answer, even a 5xx, proves it is reachable.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.circuit == nil {
		return c.client.Do(req)
	}
	out, err := c.circuit.Execute(func() (interface{}, error) {
		return c.client.Do(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("bridge unreachable, retrying later: %w", err)
		}
		return nil, err
	}
	return out.(*http.Response), nil
}

// DecodeReading parses one WS90 JSON object.
func DecodeReading(body []byte) (types.RawReading, error) {
	var r types.RawReading
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return r, errors.New("body is not a JSON object")
	}
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return types.RawReading{}, err
	}
	return r, nil
}

func transportFailure(st types.PollStatus, err error) types.PollStatus {
	st.Reachable = false
	st.UpstreamOK = false
	st.HTTPStatus = 0
	st.Kind = types.KindTransport
	st.Code = types.KindTransport.String()
	st.Message = err.Error()
	return st
}

func upstreamFailure(st types.PollStatus, body []byte) types.PollStatus {
	st.UpstreamOK = false
	st.Kind = types.KindUpstream

	var ue upstreamError
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &ue) != nil {
		st.Code = fmt.Sprintf("http_%d", st.HTTPStatus)
		st.Message = msgNonJSON
		return st
	}

	st.Code = ue.Error
	if st.Code == "" {
		st.Code = fmt.Sprintf("http_%d", st.HTTPStatus)
	}
	st.Message = ue.Message
	return st
}
