package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/camgate/camgate/internal/camera"
	"github.com/camgate/camgate/internal/config"
	"github.com/camgate/camgate/internal/events"
	"github.com/camgate/camgate/internal/latest"
	"github.com/camgate/camgate/internal/logging"
)

// Pipeline runs one reader per configured camera, merges their latest frames
// and publishes the result. Cameras are isolated from each other: one failing
// to launch or dying mid-run never affects the rest.
type Pipeline struct {
	cameras    []config.CameraConfig
	ffmpegPath string
	publisher  Publisher
	bus        *events.Bus
	logger     logging.Logger
}

// New builds a pipeline for the given cameras.
func New(cameras []config.CameraConfig, ffmpegPath string, publisher Publisher, bus *events.Bus, logger logging.Logger) *Pipeline {
	return &Pipeline{
		cameras:    cameras,
		ffmpegPath: ffmpegPath,
		publisher:  publisher,
		bus:        bus,
		logger:     logger,
	}
}

// Run starts every camera and blocks until all of them have stopped and the
// merged stream has drained. Cancelling the context begins shutdown.
func (p *Pipeline) Run(ctx context.Context) {
	slots := make([]*latest.Slot[camera.Frame], len(p.cameras))
	readers := make([]*camera.Reader, len(p.cameras))
	cameraLogger := logging.GetLogger("camera")
	for i, cfg := range p.cameras {
		slots[i] = latest.NewSlot[camera.Frame]()
		readers[i] = camera.NewReader(cfg, p.ffmpegPath, slots[i], p.bus, cameraLogger)
	}

	var wg sync.WaitGroup
	wg.Add(len(readers))
	for i, r := range readers {
		go func(r *camera.Reader, slot *latest.Slot[camera.Frame]) {
			defer wg.Done()
			defer slot.Close()
			if err := r.Run(ctx); err != nil {
				p.logger.Error("Camera failed", "entity_path", r.EntityPath(), "error", err)
				p.bus.Publish(events.CameraFailedEvent{
					EntityPath: r.EntityPath(),
					Error:      err.Error(),
					Timestamp:  time.Now(),
				})
			}
		}(r, slots[i])
	}

	sink := NewSink(p.publisher, p.bus, p.logger)
	sink.Run(Merge(slots))

	wg.Wait()
	p.logger.Info("Pipeline stopped", "cameras", len(p.cameras))
}
