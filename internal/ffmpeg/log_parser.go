package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseLogLevel extracts the log level from ffmpeg output.
// FFmpeg with -loglevel level+info outputs lines like "[info] message"
// or "[component @ 0x...] [level] message" for component-specific logs.
// Returns the level and the message with level stripped but component preserved.
func ParseLogLevel(line string) (level, msg string) {
	if len(line) < 3 || line[0] != '[' {
		return "info", line
	}

	end := strings.Index(line, "] ")
	if end == -1 {
		return "info", line
	}

	bracket := line[1:end]

	if isLogLevel(bracket) {
		return bracket, line[end+2:]
	}

	// Check for component prefix: [component @ 0x...] [level] message
	// Keep the component, strip only the [level]
	component := line[:end+2]
	rest := line[end+2:]
	if len(rest) > 2 && rest[0] == '[' {
		if nextEnd := strings.Index(rest, "] "); nextEnd != -1 {
			nextBracket := rest[1:nextEnd]
			if isLogLevel(nextBracket) {
				return nextBracket, component + rest[nextEnd+2:]
			}
		}
	}

	return "info", line
}

func isLogLevel(s string) bool {
	switch s {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return true
	}
	return false
}

var streamDimsRe = regexp.MustCompile(`\b(\d{2,5})x(\d{2,5})\b`)

// outputStreamParser scans ffmpeg's stderr metadata for the rawvideo output
// stream header, which carries the decoded frame dimensions. Input stream
// headers also carry dimensions, so lines are only considered inside an
// "Output #" section. Feed it lines with the [level] prefix already
// stripped.
type outputStreamParser struct {
	inOutput bool
}

// Parse inspects one metadata line and reports decoded dimensions when the
// rawvideo output stream header is found.
func (p *outputStreamParser) Parse(line string) (width, height int, ok bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "Output #"):
		p.inOutput = true
		return 0, 0, false
	case strings.HasPrefix(trimmed, "Input #"):
		p.inOutput = false
		return 0, 0, false
	}

	if !p.inOutput || !strings.Contains(trimmed, "Stream #") || !strings.Contains(trimmed, "rawvideo") {
		return 0, 0, false
	}

	m := streamDimsRe.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, 0, false
	}
	width, _ = strconv.Atoi(m[1])
	height, _ = strconv.Atoi(m[2])
	return width, height, true
}
