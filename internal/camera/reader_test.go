package camera

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/camgate/camgate/internal/config"
	"github.com/camgate/camgate/internal/events"
	"github.com/camgate/camgate/internal/ffmpeg"
	"github.com/camgate/camgate/internal/latest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testReader(t *testing.T, cfg config.CameraConfig) (*Reader, *latest.Slot[Frame], *events.Bus) {
	t.Helper()
	slot := latest.NewSlot[Frame]()
	bus := events.New()
	return NewReader(cfg, "ffmpeg", slot, bus, testLogger()), slot, bus
}

func rawFrame(index uint, w, h int) *ffmpeg.RawFrame {
	return &ffmpeg.RawFrame{
		OutputIndex: index,
		Width:       w,
		Height:      h,
		PixFmt:      PixFmt,
		Data:        make([]byte, w*h*3),
	}
}

func TestReaderForwardsValidFrames(t *testing.T) {
	cfg := config.CameraConfig{Host: "10.0.0.5", Port: 554, URISuffix: "stream1"}
	r, slot, _ := testReader(t, cfg)

	evs := make(chan ffmpeg.Event, 4)
	evs <- ffmpeg.Event{Kind: ffmpeg.EventStreamInfo, Width: 640, Height: 480}
	evs <- ffmpeg.Event{Kind: ffmpeg.EventFrame, Frame: rawFrame(0, 640, 480)}
	close(evs)

	before := time.Now()
	reason := r.consume(context.Background(), evs)
	after := time.Now()

	if reason != "decoder exited" {
		t.Errorf("reason = %q, want decoder exited", reason)
	}

	frame, ok := slot.Next()
	if !ok {
		t.Fatal("no frame delivered to slot")
	}
	if frame.EntityPath != "/camera/10.0.0.5/stream1" {
		t.Errorf("entity path = %q, want /camera/10.0.0.5/stream1", frame.EntityPath)
	}
	if len(frame.Data) != 640*480*3 {
		t.Errorf("frame size = %d, want %d", len(frame.Data), 640*480*3)
	}
	if frame.Timestamp.Before(before) || frame.Timestamp.After(after) {
		t.Errorf("timestamp %v outside read window [%v, %v]", frame.Timestamp, before, after)
	}
	if frame.ReferenceID == "" {
		t.Error("frame has no reference id")
	}
}

func TestReaderFiltersOtherStreamIndices(t *testing.T) {
	cfg := config.CameraConfig{Host: "10.0.0.5", Port: 554, StreamIndex: 1}
	r, slot, _ := testReader(t, cfg)

	evs := make(chan ffmpeg.Event, 4)
	evs <- ffmpeg.Event{Kind: ffmpeg.EventFrame, Frame: rawFrame(0, 4, 2)}
	evs <- ffmpeg.Event{Kind: ffmpeg.EventFrame, Frame: rawFrame(2, 4, 2)}
	evs <- ffmpeg.Event{Kind: ffmpeg.EventFrame, Frame: rawFrame(1, 4, 2)}
	close(evs)

	r.consume(context.Background(), evs)

	frame, ok := slot.Next()
	if !ok {
		t.Fatal("matching frame was not delivered")
	}
	if frame.Width != 4 || frame.Height != 2 {
		t.Errorf("unexpected frame %dx%d", frame.Width, frame.Height)
	}

	slot.Close()
	if _, ok := slot.Next(); ok {
		t.Error("frames from other stream indices were forwarded")
	}
}

func TestReaderDropsMalformedFrames(t *testing.T) {
	cfg := config.CameraConfig{Host: "10.0.0.5", Port: 554}
	r, slot, _ := testReader(t, cfg)

	bad := &ffmpeg.RawFrame{Width: 4, Height: 2, Data: make([]byte, 10)}
	evs := make(chan ffmpeg.Event, 2)
	evs <- ffmpeg.Event{Kind: ffmpeg.EventFrame, Frame: bad}
	close(evs)

	r.consume(context.Background(), evs)

	slot.Close()
	if _, ok := slot.Next(); ok {
		t.Error("malformed frame was forwarded")
	}
}

func TestReaderPublishesDecoderErrors(t *testing.T) {
	cfg := config.CameraConfig{Host: "10.0.0.5", Port: 554}
	r, _, bus := testReader(t, cfg)

	var mu sync.Mutex
	var got []events.DecoderErrorEvent
	unsub := bus.Subscribe(func(e events.DecoderErrorEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	defer unsub()

	evs := make(chan ffmpeg.Event, 2)
	evs <- ffmpeg.Event{Kind: ffmpeg.EventError, Message: "Connection refused"}
	close(evs)

	r.consume(context.Background(), evs)

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("got %d decoder error events, want 1", n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0].Message != "Connection refused" {
		t.Errorf("message = %q, want Connection refused", got[0].Message)
	}
	if got[0].EntityPath != "/camera/10.0.0.5" {
		t.Errorf("entity path = %q, want /camera/10.0.0.5", got[0].EntityPath)
	}
}

func TestReaderStopsWhenSlotCloses(t *testing.T) {
	cfg := config.CameraConfig{Host: "10.0.0.5", Port: 554}
	r, slot, _ := testReader(t, cfg)
	slot.Close()

	evs := make(chan ffmpeg.Event, 2)
	evs <- ffmpeg.Event{Kind: ffmpeg.EventFrame, Frame: rawFrame(0, 4, 2)}

	done := make(chan string, 1)
	go func() { done <- r.consume(context.Background(), evs) }()

	select {
	case reason := <-done:
		if reason != "slot closed" {
			t.Errorf("reason = %q, want slot closed", reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consume did not stop after slot close")
	}
}

func TestReaderStopsOnContextCancel(t *testing.T) {
	cfg := config.CameraConfig{Host: "10.0.0.5", Port: 554}
	r, _, _ := testReader(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	evs := make(chan ffmpeg.Event)

	done := make(chan string, 1)
	go func() { done <- r.consume(ctx, evs) }()

	cancel()
	select {
	case reason := <-done:
		if reason != "shutdown" {
			t.Errorf("reason = %q, want shutdown", reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consume did not stop after cancel")
	}
}
