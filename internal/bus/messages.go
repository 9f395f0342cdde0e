package bus

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/camgate/camgate/internal/camera"
)

// DefaultSubject is where frame messages go unless configured otherwise.
const DefaultSubject = "camgate.frames"

// Frame message headers. The payload is the raw RGB24 buffer; everything
// else rides in headers so consumers can filter without touching pixels.
const (
	HeaderEntityPath  = "Camgate-Entity-Path"
	HeaderTimestamp   = "Camgate-Timestamp"
	HeaderReferenceID = "Camgate-Reference-Id"
	HeaderWidth       = "Camgate-Width"
	HeaderHeight      = "Camgate-Height"
	HeaderPixFmt      = "Camgate-Pix-Fmt"
)

// NewFrameMsg encodes a frame as a NATS message on the given subject.
func NewFrameMsg(subject string, frame camera.Frame) *nats.Msg {
	msg := nats.NewMsg(subject)
	msg.Header.Set(HeaderEntityPath, frame.EntityPath)
	msg.Header.Set(HeaderTimestamp, frame.Timestamp.Format(time.RFC3339Nano))
	msg.Header.Set(HeaderReferenceID, frame.ReferenceID)
	msg.Header.Set(HeaderWidth, strconv.Itoa(frame.Width))
	msg.Header.Set(HeaderHeight, strconv.Itoa(frame.Height))
	msg.Header.Set(HeaderPixFmt, camera.PixFmt)
	msg.Data = frame.Data
	return msg
}

// ParseFrameMsg decodes a frame message produced by NewFrameMsg.
func ParseFrameMsg(msg *nats.Msg) (camera.Frame, error) {
	frame := camera.Frame{
		EntityPath:  msg.Header.Get(HeaderEntityPath),
		ReferenceID: msg.Header.Get(HeaderReferenceID),
		Data:        msg.Data,
	}

	ts, err := time.Parse(time.RFC3339Nano, msg.Header.Get(HeaderTimestamp))
	if err != nil {
		return camera.Frame{}, fmt.Errorf("parse %s: %w", HeaderTimestamp, err)
	}
	frame.Timestamp = ts

	if frame.Width, err = strconv.Atoi(msg.Header.Get(HeaderWidth)); err != nil {
		return camera.Frame{}, fmt.Errorf("parse %s: %w", HeaderWidth, err)
	}
	if frame.Height, err = strconv.Atoi(msg.Header.Get(HeaderHeight)); err != nil {
		return camera.Frame{}, fmt.Errorf("parse %s: %w", HeaderHeight, err)
	}

	if pixFmt := msg.Header.Get(HeaderPixFmt); pixFmt != camera.PixFmt {
		return camera.Frame{}, fmt.Errorf("unsupported pixel format %q", pixFmt)
	}
	if err := frame.Validate(); err != nil {
		return camera.Frame{}, err
	}
	return frame, nil
}
