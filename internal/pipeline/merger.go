// Package pipeline wires cameras, the fan-in merger and the publish sink
// into one supervised unit.
package pipeline

import (
	"sync"

	"github.com/camgate/camgate/internal/camera"
	"github.com/camgate/camgate/internal/latest"
)

// Merge fans the latest frames of every slot into one channel, in arrival
// order. No ordering is imposed across cameras. The returned channel closes
// once every slot has closed and drained.
func Merge(slots []*latest.Slot[camera.Frame]) <-chan camera.Frame {
	out := make(chan camera.Frame)

	var wg sync.WaitGroup
	wg.Add(len(slots))
	for _, slot := range slots {
		go func(s *latest.Slot[camera.Frame]) {
			defer wg.Done()
			for {
				frame, ok := s.Next()
				if !ok {
					return
				}
				out <- frame
			}
		}(slot)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
