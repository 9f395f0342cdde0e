package pipeline

import (
	"github.com/camgate/camgate/internal/camera"
	"github.com/camgate/camgate/internal/events"
	"github.com/camgate/camgate/internal/logging"
)

// Publisher delivers one frame to the message bus.
type Publisher interface {
	Publish(frame camera.Frame) error
}

// Sink drains the merged frame stream into a publisher. A failed publish is
// logged and reported on the bus, then the frame is abandoned; the sink never
// retries and never slows the stream down.
type Sink struct {
	publisher Publisher
	bus       *events.Bus
	logger    logging.Logger
}

// NewSink builds a sink over the given publisher.
func NewSink(publisher Publisher, bus *events.Bus, logger logging.Logger) *Sink {
	return &Sink{publisher: publisher, bus: bus, logger: logger}
}

// Run consumes frames until the channel closes.
func (s *Sink) Run(frames <-chan camera.Frame) {
	for frame := range frames {
		if err := s.publisher.Publish(frame); err != nil {
			s.logger.Error("Failed to publish frame",
				"entity_path", frame.EntityPath, "error", err)
			s.bus.Publish(events.FramePublishErrorEvent{
				EntityPath: frame.EntityPath,
				Error:      err.Error(),
			})
			continue
		}
		s.bus.Publish(events.FramePublishedEvent{
			EntityPath: frame.EntityPath,
			Width:      frame.Width,
			Height:     frame.Height,
		})
	}
}
