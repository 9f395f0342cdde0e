package events

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan FramePublishedEvent, 1)

	unsub := bus.Subscribe(func(e FramePublishedEvent) {
		received <- e
	})
	defer unsub()

	event := FramePublishedEvent{
		EntityPath: "/camera/10.0.0.5/stream1",
		Width:      640,
		Height:     480,
	}
	bus.Publish(event)

	got := <-received
	if got.EntityPath != event.EntityPath {
		t.Errorf("Expected entity_path %s, got %s", event.EntityPath, got.EntityPath)
	}
	if got.Width != 640 || got.Height != 480 {
		t.Errorf("Expected 640x480, got %dx%d", got.Width, got.Height)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan CameraFailedEvent, 1)
	received2 := make(chan CameraFailedEvent, 1)

	unsub1 := bus.Subscribe(func(e CameraFailedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e CameraFailedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(CameraFailedEvent{EntityPath: "/camera/10.0.0.5/stream1", Error: "spawn failed"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan FramePublishErrorEvent, 1)

	unsub := bus.Subscribe(func(e FramePublishErrorEvent) {
		received <- e
	})

	bus.Publish(FramePublishErrorEvent{EntityPath: "/camera/a/1"})
	<-received

	unsub()

	bus.Publish(FramePublishErrorEvent{EntityPath: "/camera/b/1"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_UnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(int) {})
	if unsub == nil {
		t.Fatal("Subscribe should return a no-op unsubscribe for unknown handler types")
	}
	unsub()
}
