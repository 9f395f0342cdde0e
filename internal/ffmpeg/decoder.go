package ffmpeg

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/camgate/camgate/internal/logging"
)

const (
	rawPixFmt     = "rgb24"
	bytesPerPixel = 3
	killTimeout   = 5 * time.Second
)

// dimensions is the decoded frame geometry recovered from stderr metadata.
type dimensions struct {
	width  int
	height int
}

// Decoder runs one ffmpeg subprocess and exposes its output as an event
// stream. The returned channel carries diagnostics, decoded frames and a
// final EventDone, after which it is closed. The decoder never restarts its
// subprocess.
type Decoder struct {
	opts     DecodeOptions
	cmd      *exec.Cmd
	events   chan Event
	done     chan struct{} // closed once the subprocess has been reaped
	logger   logging.Logger
	stopOnce sync.Once
}

// NewDecoder creates a decoder for one camera source.
func NewDecoder(opts DecodeOptions, logger logging.Logger) *Decoder {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	return &Decoder{
		opts:   opts,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches the subprocess and returns its event stream. A launch
// failure is returned to the caller; it is an unrecoverable fault for this
// camera and the decoder must not be reused.
func (d *Decoder) Start() (<-chan Event, error) {
	args := BuildDecodeArgs(&d.opts)
	d.cmd = exec.Command(d.opts.FFmpegPath, args...)
	d.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	// Without the diagnostic stream the frame dimensions are unknowable, so
	// the decoder produces log-less, frame-less output until the subprocess
	// exits. That degradation is deliberate, not a launch failure.
	stderr, err := d.cmd.StderrPipe()
	if err != nil {
		d.logger.Warn("Failed to create stderr pipe, decoder will produce no frames", "error", err)
		stderr = nil
	}

	if err := d.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", d.opts.FFmpegPath, err)
	}

	d.logger.Info("Decoder process started", "pid", d.cmd.Process.Pid, "stream_index", d.opts.StreamIndex)

	// The dims channel hands the parsed geometry from the stderr pump to
	// the stdout pump; it is closed instead when stderr ends without one.
	dims := make(chan dimensions, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.pumpDiagnostics(stderr, dims)
	}()
	go func() {
		defer wg.Done()
		d.pumpFrames(stdout, dims)
	}()

	go func() {
		wg.Wait()
		waitErr := d.cmd.Wait()
		close(d.done)
		msg := "decoder exited"
		if waitErr != nil {
			msg = fmt.Sprintf("decoder exited: %v", waitErr)
		}
		d.events <- Event{Kind: EventDone, Message: msg}
		close(d.events)
	}()

	return d.events, nil
}

// Stop asks the subprocess to exit with SIGINT, force-killing it if it is
// still running after killTimeout. Safe to call more than once.
func (d *Decoder) Stop() {
	d.stopOnce.Do(func() {
		if d.cmd == nil || d.cmd.Process == nil {
			return
		}
		if err := d.cmd.Process.Signal(syscall.SIGINT); err != nil {
			d.logger.Warn("Failed to send SIGINT to decoder", "error", err)
		}
		go func() {
			select {
			case <-d.done:
			case <-time.After(killTimeout):
				d.logger.Warn("Decoder did not exit after SIGINT, killing", "timeout", killTimeout)
				_ = d.cmd.Process.Kill()
			}
		}()
	})
}

// pumpDiagnostics scans stderr, recovers the decoded frame geometry from the
// output stream header, and forwards every line as a log or error event.
func (d *Decoder) pumpDiagnostics(r io.Reader, dims chan<- dimensions) {
	if r == nil {
		close(dims)
		return
	}

	parser := outputStreamParser{}
	dimsSent := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		level, msg := ParseLogLevel(scanner.Text())

		if !dimsSent {
			if w, h, ok := parser.Parse(msg); ok {
				dims <- dimensions{width: w, height: h}
				dimsSent = true
				d.events <- Event{Kind: EventStreamInfo, Width: w, Height: h}
			}
		}

		switch level {
		case "panic", "fatal", "error":
			d.events <- Event{Kind: EventError, Message: msg}
		default:
			d.events <- Event{Kind: EventLog, Level: level, Message: msg}
		}
	}
	if err := scanner.Err(); err != nil {
		d.logger.Warn("Error reading decoder diagnostics", "error", err)
	}
	if !dimsSent {
		close(dims)
	}
}

// pumpFrames reads fixed-size raw frames off stdout once the geometry is
// known. Each frame gets a freshly allocated buffer; ownership transfers to
// the event consumer.
func (d *Decoder) pumpFrames(r io.Reader, dims <-chan dimensions) {
	dim, ok := <-dims
	if !ok {
		// No geometry means no decodable output; drain so the subprocess
		// never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
		return
	}

	frameSize := dim.width * dim.height * bytesPerPixel
	for {
		buf := make([]byte, frameSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			// EOF, or a truncated trailing frame at stream end.
			return
		}
		d.events <- Event{Kind: EventFrame, Frame: &RawFrame{
			OutputIndex: d.opts.StreamIndex,
			Width:       dim.width,
			Height:      dim.height,
			PixFmt:      rawPixFmt,
			Data:        buf,
		}}
	}
}
