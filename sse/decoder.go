package sse

import (
	"bytes"
	"strings"
)

// Decoder accumulates raw bytes and hands out complete lines. It buffers
// bytes rather than text, so a multi-byte character split across chunks is
// only decoded once its line is complete.
//
// The zero value is ready to use.
type Decoder struct {
	buf []byte
}

// Write appends a chunk to the buffer.
func (d *Decoder) Write(chunk []byte) {
	d.buf = append(d.buf, chunk...)
}

// Next removes the first complete line from the buffer and returns it
// without its "\n" terminator or a single trailing "\r". It reports false
// when the buffer holds no terminator.
func (d *Decoder) Next() (string, bool) {
	i := bytes.IndexByte(d.buf, '\n')
	if i < 0 {
		return "", false
	}
	line := string(d.buf[:i])
	d.buf = d.buf[i+1:]
	return strings.TrimSuffix(line, "\r"), true
}

// Unread puts line and a terminator back in front of the buffer.
func (d *Decoder) Unread(line string) {
	restored := make([]byte, 0, len(line)+1+len(d.buf))
	restored = append(restored, line...)
	restored = append(restored, '\n')
	d.buf = append(restored, d.buf...)
}

// Flush returns whatever is buffered, split on "\n" with a trailing "\r"
// removed from each piece, and empties the buffer. An empty buffer yields no
// lines; a trailing terminator does not produce an extra empty line.
func (d *Decoder) Flush() []string {
	if len(d.buf) == 0 {
		return nil
	}
	rest := strings.TrimSuffix(string(d.buf), "\n")
	d.buf = nil
	lines := strings.Split(rest, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Buffered returns the number of bytes waiting for a terminator.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}
