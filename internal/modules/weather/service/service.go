package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vinthewrench/offgrid-weather-station/internal/bridge"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/engine"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

// Poller fetches one reading from the upstream bridge.
type Poller interface {
	Poll(ctx context.Context, now time.Time) bridge.Result
}

// Service feeds readings from the bridge poller and from MQTT into the engine.
type Service struct {
	engine *engine.Engine
	poller Poller
	logger *slog.Logger
	now    func() time.Time
}

func NewService(eng *engine.Engine, poller Poller, logger *slog.Logger) *Service {
	return &Service{
		engine: eng,
		poller: poller,
		logger: logger,
		now:    time.Now,
	}
}

// PollOnce runs a single poll cycle: fetch, record health, apply. Failures are
// logged when the health state changes and otherwise only at debug.
func (s *Service) PollOnce(ctx context.Context) types.PollStatus {
	prev := s.engine.Poll()

	res := s.poller.Poll(ctx, s.now())
	s.engine.RecordPoll(res.Status)
	s.logPollStatus(prev, res.Status)

	if res.Reading != nil {
		s.ApplyReading(ctx, *res.Reading, "poll")
	}
	return res.Status
}

// ApplyReading hands r to the engine and logs the outcome.
func (s *Service) ApplyReading(ctx context.Context, r types.RawReading, source string) engine.Result {
	res := s.engine.Apply(ctx, r, s.now())

	switch {
	case !res.Accepted:
		s.logger.Debug("reading rejected",
			"source", source,
			"kind", res.Kind.String(),
		)
	case res.Err != nil:
		s.logger.Warn("reading applied with storage errors",
			"source", source,
			"kind", res.Kind.String(),
			"error", res.Err,
		)
	default:
		s.logger.Debug("reading applied",
			"source", source,
			"model", r.Model,
			"id", r.ID,
		)
	}
	return res
}

func (s *Service) logPollStatus(prev, cur types.PollStatus) {
	changed := prev.UpstreamOK != cur.UpstreamOK || prev.Code != cur.Code || prev.PolledTS == 0
	if !changed {
		if !cur.UpstreamOK {
			s.logger.Debug("ws90 poll still failing", "code", cur.Code, "error", cur.Message)
		}
		return
	}

	if cur.UpstreamOK {
		s.logger.Info("ws90 poll ok", "http_status", cur.HTTPStatus)
		return
	}
	s.logger.Warn("ws90 poll failed",
		"kind", cur.Kind.String(),
		"code", cur.Code,
		"http_status", cur.HTTPStatus,
		"error", cur.Message,
	)
}
