package sse_test

import (
	"testing"

	"github.com/faithbaptist/manna/sse"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want sse.Frame
	}{
		{"", sse.Frame{Raw: "", Kind: sse.KindBlank}},
		{"   ", sse.Frame{Raw: "   ", Kind: sse.KindBlank}},
		{": keep-alive", sse.Frame{Raw: ": keep-alive", Kind: sse.KindComment}},
		{"data: [DONE]", sse.Frame{Raw: "data: [DONE]", Kind: sse.KindData, Payload: "[DONE]"}},
		{`data: {"a":1}  `, sse.Frame{Raw: `data: {"a":1}  `, Kind: sse.KindData, Payload: `{"a":1}`}},
		{"data:no-space", sse.Frame{Raw: "data:no-space", Kind: sse.KindUnrecognized}},
		{"event: message", sse.Frame{Raw: "event: message", Kind: sse.KindUnrecognized}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sse.Classify(tt.line))
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "blank", sse.KindBlank.String())
	assert.Equal(t, "comment", sse.KindComment.String())
	assert.Equal(t, "data", sse.KindData.String())
	assert.Equal(t, "unrecognized", sse.KindUnrecognized.String())
}
