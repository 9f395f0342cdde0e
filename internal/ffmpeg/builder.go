// Package ffmpeg supervises an ffmpeg decode subprocess and turns its two
// output channels (raw frames on stdout, diagnostics on stderr) into a
// single structured event stream.
package ffmpeg

import (
	"fmt"
	"strconv"
)

// DefaultTimeoutMicros is the RTSP socket read timeout, in microseconds.
const DefaultTimeoutMicros = 5_000_000

// DecodeOptions configures a decode subprocess for one camera.
type DecodeOptions struct {
	// FFmpegPath is the binary to execute. Defaults to "ffmpeg" on $PATH.
	FFmpegPath string
	// URL is the RTSP source.
	URL string
	// StreamIndex selects which video sub-stream of the source to decode.
	StreamIndex uint
	// TimeoutMicros is the socket read timeout in microseconds.
	// Defaults to DefaultTimeoutMicros.
	TimeoutMicros int
}

// BuildDecodeArgs builds the ffmpeg argv for decoding one RTSP stream to
// raw RGB24 frames on stdout. The transport is TCP so frame delivery is
// connection-oriented, and fps_mode passthrough disables decoder-side frame
// duplication and dropping so output timing matches source timing.
// Diagnostics go to stderr with a parseable [level] prefix.
func BuildDecodeArgs(o *DecodeOptions) []string {
	timeout := o.TimeoutMicros
	if timeout <= 0 {
		timeout = DefaultTimeoutMicros
	}

	return []string{
		"-nostdin",
		"-loglevel", "level+info",
		"-rtsp_transport", "tcp",
		"-timeout", strconv.Itoa(timeout),
		"-allowed_media_types", "video",
		"-i", o.URL,
		"-map", fmt.Sprintf("0:v:%d", o.StreamIndex),
		"-fps_mode", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	}
}
