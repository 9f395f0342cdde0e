package ffmpeg

// EventKind identifies what a decoder event carries.
type EventKind int

const (
	// EventLog is a diagnostic line from the decoder: version and
	// configuration banners, stream mappings, progress. Never fatal.
	EventLog EventKind = iota
	// EventError is an explicit error-level diagnostic. The decoder keeps
	// running; the consumer decides what to log.
	EventError
	// EventStreamInfo reports the decoded output dimensions, parsed from
	// the output stream header. Emitted at most once, before any frame.
	EventStreamInfo
	// EventFrame carries one decoded raw frame.
	EventFrame
	// EventDone is the completion marker: the subprocess has exited and no
	// further events follow.
	EventDone
)

// Event is one entry in a decoder's event stream.
type Event struct {
	Kind    EventKind
	Level   string // EventLog: parsed ffmpeg log level
	Message string // EventLog, EventError, EventDone
	Width   int    // EventStreamInfo
	Height  int    // EventStreamInfo
	Frame   *RawFrame
}

// RawFrame is one decoded frame as read off the subprocess pipe.
// Data is a fixed-layout RGB24 buffer, row-major, no padding:
// len(Data) == Width*Height*3.
type RawFrame struct {
	// OutputIndex is the video sub-stream the frame belongs to.
	OutputIndex uint
	Width       int
	Height      int
	PixFmt      string
	Data        []byte
}
