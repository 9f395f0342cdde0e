// Package camera turns one RTSP source into a stream of validated frames.
// Each reader owns a single decoder subprocess for the lifetime of its Run
// call and never restarts it; recovery is the operator's job.
package camera

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/camgate/camgate/internal/config"
	"github.com/camgate/camgate/internal/events"
	"github.com/camgate/camgate/internal/ffmpeg"
	"github.com/camgate/camgate/internal/latest"
	"github.com/camgate/camgate/internal/logging"
)

// Reader supervises one camera: decoder subprocess, frame validation, and
// delivery into the camera's latest-frame slot.
type Reader struct {
	cfg        config.CameraConfig
	ffmpegPath string
	sourceURL  string
	entityPath string
	refID      string
	slot       *latest.Slot[Frame]
	bus        *events.Bus
	logger     logging.Logger
}

// NewReader builds a reader for one camera. The slot receives every valid
// frame; the bus receives lifecycle and error events.
func NewReader(cfg config.CameraConfig, ffmpegPath string, slot *latest.Slot[Frame], bus *events.Bus, logger logging.Logger) *Reader {
	sourceURL := BuildURL(cfg)
	return &Reader{
		cfg:        cfg,
		ffmpegPath: ffmpegPath,
		sourceURL:  sourceURL,
		entityPath: EntityPath(sourceURL),
		refID:      newReferenceID(),
		slot:       slot,
		bus:        bus,
		logger:     logger,
	}
}

// EntityPath reports the identity path frames from this reader carry.
func (r *Reader) EntityPath() string {
	return r.entityPath
}

// Run starts the decoder and consumes its events until the context is
// cancelled, the subprocess exits, or the slot is closed. A launch failure is
// returned; everything after a successful launch is handled in place.
func (r *Reader) Run(ctx context.Context) error {
	dec := ffmpeg.NewDecoder(ffmpeg.DecodeOptions{
		FFmpegPath:  r.ffmpegPath,
		URL:         r.sourceURL,
		StreamIndex: r.cfg.StreamIndex,
	}, logging.GetLogger("ffmpeg"))

	evs, err := dec.Start()
	if err != nil {
		return fmt.Errorf("launch decoder for %s: %w", r.entityPath, err)
	}

	r.logger.Info("Camera started", "entity_path", r.entityPath, "url", MaskedURL(r.cfg))
	r.bus.Publish(events.CameraStartedEvent{
		EntityPath: r.entityPath,
		Host:       r.cfg.Host,
		Timestamp:  time.Now(),
	})

	reason := r.consume(ctx, evs)

	dec.Stop()
	go func() {
		for range evs {
		}
	}()

	r.logger.Info("Camera stopped",
		"entity_path", r.entityPath, "reason", reason, "dropped_frames", r.slot.Drops())
	r.bus.Publish(events.CameraStoppedEvent{
		EntityPath: r.entityPath,
		Reason:     reason,
		Drops:      r.slot.Drops(),
		Timestamp:  time.Now(),
	})
	return nil
}

// consume drains decoder events into the slot and the bus. It returns the
// reason the loop ended.
func (r *Reader) consume(ctx context.Context, evs <-chan ffmpeg.Event) string {
	for {
		select {
		case <-ctx.Done():
			return "shutdown"
		case ev, ok := <-evs:
			if !ok {
				return "decoder exited"
			}
			switch ev.Kind {
			case ffmpeg.EventLog:
				r.logDiagnostic(ev.Level, ev.Message)
			case ffmpeg.EventError:
				r.logger.Error("Decoder error", "entity_path", r.entityPath, "message", ev.Message)
				r.bus.Publish(events.DecoderErrorEvent{
					EntityPath: r.entityPath,
					Message:    ev.Message,
				})
			case ffmpeg.EventStreamInfo:
				r.logger.Info("Stream geometry detected",
					"entity_path", r.entityPath, "width", ev.Width, "height", ev.Height)
			case ffmpeg.EventFrame:
				if ev.Frame.OutputIndex != r.cfg.StreamIndex {
					continue
				}
				if !r.deliver(ev.Frame) {
					return "slot closed"
				}
			case ffmpeg.EventDone:
				r.logDiagnostic("info", ev.Message)
				return "decoder exited"
			}
		}
	}
}

// deliver stamps, validates and stores one frame. Reports false once the
// slot refuses further frames.
func (r *Reader) deliver(raw *ffmpeg.RawFrame) bool {
	frame := Frame{
		EntityPath:  r.entityPath,
		Timestamp:   time.Now(),
		ReferenceID: r.refID,
		Width:       raw.Width,
		Height:      raw.Height,
		Data:        raw.Data,
	}
	if err := frame.Validate(); err != nil {
		r.logger.Warn("Dropping malformed frame", "entity_path", r.entityPath, "error", err)
		return true
	}
	return r.slot.Put(frame) == nil
}

func (r *Reader) logDiagnostic(level, msg string) {
	switch level {
	case "debug", "verbose", "trace":
		r.logger.Debug(msg, "entity_path", r.entityPath)
	case "warning":
		r.logger.Warn(msg, "entity_path", r.entityPath)
	default:
		r.logger.Info(msg, "entity_path", r.entityPath)
	}
}

func newReferenceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
