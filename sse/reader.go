package sse

import (
	"errors"
	"io"
)

const defaultChunkSize = 4096

// Reader pulls frames from a byte source. Reading the source is its only
// suspension point; everything between reads is synchronous.
//
// Once the source ends (or Finish is called) the Reader enters the flush
// pass: the remaining buffered text is split into lines and emitted one by
// one, then Next returns io.EOF.
type Reader struct {
	src     io.Reader
	dec     Decoder
	chunk   []byte
	stalled bool // scanning waits for the next chunk
	done    bool // source exhausted or abandoned

	flushing bool
	pending  []string
}

// NewReader returns a Reader that reads chunks from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src, chunk: make([]byte, defaultChunkSize)}
}

// Next returns the next frame. It returns io.EOF after the flush pass is
// exhausted, or the source's error if reading fails.
func (r *Reader) Next() (Frame, error) {
	for {
		if r.flushing {
			if len(r.pending) == 0 {
				return Frame{}, io.EOF
			}
			line := r.pending[0]
			r.pending = r.pending[1:]
			return Classify(line), nil
		}
		if !r.stalled {
			if line, ok := r.dec.Next(); ok {
				return Classify(line), nil
			}
		}
		if r.done {
			r.startFlush()
			continue
		}
		n, err := r.src.Read(r.chunk)
		if n > 0 {
			r.dec.Write(r.chunk[:n])
			r.stalled = false
		}
		if errors.Is(err, io.EOF) {
			r.done = true
			continue
		}
		if err != nil {
			return Frame{}, err
		}
	}
}

// Unread pushes f back in front of the buffer and stops scanning until more
// bytes arrive. During the flush pass the frame is dropped instead.
func (r *Reader) Unread(f Frame) {
	if r.flushing {
		return
	}
	r.dec.Unread(f.Raw)
	r.stalled = true
}

// Finish stops reading the source. The next call to Next starts the flush
// pass over the lines still buffered.
func (r *Reader) Finish() {
	if !r.flushing {
		r.startFlush()
	}
}

// Flushing reports whether the Reader is in the flush pass.
func (r *Reader) Flushing() bool {
	return r.flushing
}

func (r *Reader) startFlush() {
	r.done = true
	r.flushing = true
	r.stalled = false
	r.pending = r.dec.Flush()
}
