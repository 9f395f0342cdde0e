package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeCameraStarted uint32 = iota + 1
	TypeCameraStopped
	TypeCameraFailed
	TypeDecoderError
	TypeFramePublished
	TypeFramePublishError
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// CameraStartedEvent is published when a camera reader has launched its
// decoder and entered its event loop.
type CameraStartedEvent struct {
	EntityPath string    `json:"entity_path"`
	Host       string    `json:"host"`
	Timestamp  time.Time `json:"timestamp"`
}

// Type returns the event type identifier for CameraStartedEvent.
func (e CameraStartedEvent) Type() uint32 { return TypeCameraStarted }

// CameraStoppedEvent is published when a camera reader ends its loop,
// either because the decoder finished or the frame slot was closed.
type CameraStoppedEvent struct {
	EntityPath string `json:"entity_path"`
	Reason     string `json:"reason"`
	// Drops is how many frames were overwritten in the camera's slot
	// before a consumer read them.
	Drops     uint64    `json:"drops"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for CameraStoppedEvent.
func (e CameraStoppedEvent) Type() uint32 { return TypeCameraStopped }

// CameraFailedEvent is published when a camera's decoder subprocess could
// not be launched. The failure is isolated to the one camera.
type CameraFailedEvent struct {
	EntityPath string    `json:"entity_path"`
	Error      string    `json:"error"`
	Timestamp  time.Time `json:"timestamp"`
}

// Type returns the event type identifier for CameraFailedEvent.
func (e CameraFailedEvent) Type() uint32 { return TypeCameraFailed }

// DecoderErrorEvent is published for explicit error events on a decoder's
// diagnostic stream. These are logged and never stop the reader.
type DecoderErrorEvent struct {
	EntityPath string `json:"entity_path"`
	Message    string `json:"message"`
}

// Type returns the event type identifier for DecoderErrorEvent.
func (e DecoderErrorEvent) Type() uint32 { return TypeDecoderError }

// FramePublishedEvent is published after a frame was accepted by the bus.
type FramePublishedEvent struct {
	EntityPath string `json:"entity_path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// Type returns the event type identifier for FramePublishedEvent.
func (e FramePublishedEvent) Type() uint32 { return TypeFramePublished }

// FramePublishErrorEvent is published when a frame publish fails. The frame
// is dropped, never retried.
type FramePublishErrorEvent struct {
	EntityPath string `json:"entity_path"`
	Error      string `json:"error"`
}

// Type returns the event type identifier for FramePublishErrorEvent.
func (e FramePublishErrorEvent) Type() uint32 { return TypeFramePublishError }
