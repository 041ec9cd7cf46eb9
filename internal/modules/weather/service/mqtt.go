package service

import (
	"context"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

// ReadingSubscriber delivers decoded WS90 readings from a message bus.
type ReadingSubscriber interface {
	SetMessageHandler(handler func(reading types.RawReading) error)
}

// Register routes readings from the subscriber into the engine. Readings
// arriving this way do not touch poll health.
func (s *Service) Register(subscriber ReadingSubscriber) {
	subscriber.SetMessageHandler(func(reading types.RawReading) error {
		res := s.ApplyReading(context.Background(), reading, "mqtt")
		return res.Err
	})
}
