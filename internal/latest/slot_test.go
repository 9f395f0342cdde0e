package latest

import (
	"sync"
	"testing"
	"time"
)

func TestSlotDeliversValue(t *testing.T) {
	s := NewSlot[int]()
	if err := s.Put(42); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	v, ok := s.Next()
	if !ok || v != 42 {
		t.Fatalf("Next = (%d, %v), want (42, true)", v, ok)
	}
}

func TestSlotOverwriteKeepsFreshest(t *testing.T) {
	s := NewSlot[string]()
	s.Put("stale")
	s.Put("fresh")

	v, ok := s.Next()
	if !ok || v != "fresh" {
		t.Fatalf("Next = (%q, %v), want (fresh, true)", v, ok)
	}
	if got := s.Drops(); got != 1 {
		t.Errorf("Drops = %d, want 1", got)
	}

	// Only one value must come out; a second Next would block forever.
	done := make(chan struct{})
	go func() {
		s.Next()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("Next returned a second value after overwrite")
	case <-time.After(50 * time.Millisecond):
	}
	s.Close()
	<-done
}

func TestSlotNextBlocksUntilPut(t *testing.T) {
	s := NewSlot[int]()
	got := make(chan int, 1)
	go func() {
		v, _ := s.Next()
		got <- v
	}()

	time.Sleep(20 * time.Millisecond)
	s.Put(7)

	select {
	case v := <-got:
		if v != 7 {
			t.Errorf("Next = %d, want 7", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not wake after Put")
	}
}

func TestSlotPutAfterClose(t *testing.T) {
	s := NewSlot[int]()
	s.Close()
	if err := s.Put(1); err != ErrClosed {
		t.Fatalf("Put after Close = %v, want ErrClosed", err)
	}
}

func TestSlotCloseDrainsPendingValue(t *testing.T) {
	s := NewSlot[int]()
	s.Put(9)
	s.Close()

	v, ok := s.Next()
	if !ok || v != 9 {
		t.Fatalf("Next = (%d, %v), want (9, true)", v, ok)
	}
	if _, ok := s.Next(); ok {
		t.Fatal("Next reported a value from a closed, drained slot")
	}
}

func TestSlotCloseIsIdempotent(t *testing.T) {
	s := NewSlot[int]()
	s.Close()
	s.Close()
	if _, ok := s.Next(); ok {
		t.Fatal("Next reported a value from an empty closed slot")
	}
}

func TestSlotConcurrentProducers(t *testing.T) {
	s := NewSlot[int]()
	const puts = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < puts; i++ {
			s.Put(i)
		}
	}()

	consumed := 0
	doneCh := make(chan struct{})
	go func() {
		for {
			if _, ok := s.Next(); !ok {
				close(doneCh)
				return
			}
			consumed++
		}
	}()

	wg.Wait()
	s.Close()
	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not finish after Close")
	}

	if consumed == 0 {
		t.Fatal("consumer saw no values")
	}
	if uint64(consumed)+s.Drops() < puts {
		t.Errorf("consumed %d + dropped %d < %d puts", consumed, s.Drops(), puts)
	}
}
