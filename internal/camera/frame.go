package camera

import (
	"fmt"
	"time"
)

const (
	// PixFmt is the only pixel format frames are produced in.
	PixFmt = "rgb24"

	bytesPerPixel = 3
)

// Frame is one decoded image ready for publication.
type Frame struct {
	// EntityPath identifies the originating camera, /camera/<host>/<path>.
	EntityPath string
	// Timestamp is the wall-clock time the frame was read off the decoder,
	// not the camera's capture time.
	Timestamp time.Time
	// ReferenceID groups frames from one decoder run.
	ReferenceID string
	Width       int
	Height      int
	// Data is tightly packed RGB24, row-major: len(Data) == Width*Height*3.
	Data []byte
}

// Validate checks the buffer length against the declared geometry.
func (f *Frame) Validate() error {
	want := f.Width * f.Height * bytesPerPixel
	if len(f.Data) != want {
		return fmt.Errorf("frame buffer is %d bytes, want %d for %dx%d %s",
			len(f.Data), want, f.Width, f.Height, PixFmt)
	}
	return nil
}
