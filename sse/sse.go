// Package sse splits a chunked server-sent-events byte stream into frames.
//
// [Decoder] owns the decode buffer and is driven by whoever feeds it chunks.
// [Reader] wraps an io.Reader into a pull-based iterator over classified
// frames, with push-back for payloads that cannot be interpreted yet and a
// final flush of whatever remains buffered when the source ends.
package sse

import "strings"

// DataPrefix introduces a data frame.
const DataPrefix = "data: "

// Kind classifies a decoded line.
type Kind int

const (
	KindBlank        Kind = iota // Empty or whitespace-only line.
	KindComment                  // Line starting with ':'.
	KindData                     // Line starting with "data: ".
	KindUnrecognized             // Anything else.
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindData:
		return "data"
	default:
		return "unrecognized"
	}
}

// Frame is one decoded line. Raw is the line without its terminator. Payload
// is set for data frames and holds the trimmed text after the prefix.
type Frame struct {
	Raw     string
	Kind    Kind
	Payload string
}

// Classify discriminates a line by its leading characters.
func Classify(line string) Frame {
	switch {
	case strings.TrimSpace(line) == "":
		return Frame{Raw: line, Kind: KindBlank}
	case strings.HasPrefix(line, ":"):
		return Frame{Raw: line, Kind: KindComment}
	case strings.HasPrefix(line, DataPrefix):
		return Frame{Raw: line, Kind: KindData, Payload: strings.TrimSpace(line[len(DataPrefix):])}
	default:
		return Frame{Raw: line, Kind: KindUnrecognized}
	}
}
