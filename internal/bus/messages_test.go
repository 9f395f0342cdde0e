package bus

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/camgate/camgate/internal/camera"
)

func testFrame() camera.Frame {
	data := make([]byte, 4*2*3)
	for i := range data {
		data[i] = byte(i)
	}
	return camera.Frame{
		EntityPath:  "/camera/10.0.0.5/stream1",
		Timestamp:   time.Date(2026, 8, 25, 12, 30, 0, 123456789, time.UTC),
		ReferenceID: "ab12cd34",
		Width:       4,
		Height:      2,
		Data:        data,
	}
}

func TestFrameMsgRoundTrip(t *testing.T) {
	original := testFrame()
	msg := NewFrameMsg("camgate.frames", original)

	if msg.Subject != "camgate.frames" {
		t.Errorf("subject = %q, want camgate.frames", msg.Subject)
	}
	if !bytes.Equal(msg.Data, original.Data) {
		t.Error("payload is not the raw frame buffer")
	}

	decoded, err := ParseFrameMsg(msg)
	if err != nil {
		t.Fatalf("ParseFrameMsg failed: %v", err)
	}
	if decoded.EntityPath != original.EntityPath {
		t.Errorf("entity path = %q, want %q", decoded.EntityPath, original.EntityPath)
	}
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("timestamp = %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.ReferenceID != original.ReferenceID {
		t.Errorf("reference id = %q, want %q", decoded.ReferenceID, original.ReferenceID)
	}
	if decoded.Width != 4 || decoded.Height != 2 {
		t.Errorf("geometry = %dx%d, want 4x2", decoded.Width, decoded.Height)
	}
}

func TestParseFrameMsgRejectsTruncatedPayload(t *testing.T) {
	msg := NewFrameMsg("camgate.frames", testFrame())
	msg.Data = msg.Data[:10]
	if _, err := ParseFrameMsg(msg); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func TestParseFrameMsgRejectsBadPixFmt(t *testing.T) {
	msg := NewFrameMsg("camgate.frames", testFrame())
	msg.Header.Set(HeaderPixFmt, "yuv420p")
	if _, err := ParseFrameMsg(msg); err == nil {
		t.Fatal("expected error for foreign pixel format")
	}
}

func TestPublishBeforeConnect(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewFramePublisher("nats://127.0.0.1:4222", "", logger)
	if err := p.Publish(testFrame()); err != ErrNotConnected {
		t.Fatalf("Publish = %v, want ErrNotConnected", err)
	}
}

func TestDefaultSubjectApplied(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewFramePublisher("nats://127.0.0.1:4222", "", logger)
	if p.subject != DefaultSubject {
		t.Errorf("subject = %q, want %q", p.subject, DefaultSubject)
	}
}
