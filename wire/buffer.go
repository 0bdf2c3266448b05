package wire

import "strings"

// LineBuffer accumulates streamed text and yields complete lines. The
// suffix of the input not yet terminated by a line break is retained
// across calls, so a chunk boundary falling inside a line (or inside the
// terminal marker) never produces a truncated event.
//
// The zero value is ready to use. A LineBuffer is owned by a single
// stream; it is not safe for concurrent use.
type LineBuffer struct {
	pending string
}

// Feed appends chunk to the buffered fragment and returns all complete
// lines, in order. The protocol delimits lines with \n; a trailing \r is
// stripped so \r\n framed input decodes identically. The segment after
// the last line break, which may be empty, becomes the new pending
// fragment. No line is returned twice and no input is dropped.
func (b *LineBuffer) Feed(chunk string) []string {
	data := b.pending + chunk
	if !strings.Contains(data, "\n") {
		b.pending = data
		return nil
	}

	parts := strings.Split(data, "\n")
	b.pending = parts[len(parts)-1]

	lines := parts[: len(parts)-1 : len(parts)-1]
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Pending returns the trailing fragment that has not yet been terminated
// by a line break.
func (b *LineBuffer) Pending() string {
	return b.pending
}
