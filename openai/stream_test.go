package openai_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// chunkedResponse writes each chunk and flushes, so the client sees the
// exact chunk boundaries.
type chunkedResponse []string

func (c chunkedResponse) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, chunk := range c {
			_, _ = io.WriteString(w, chunk)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func delta(text string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`, text) + "\n\n"
}

func streamFrom(t *testing.T, resp chunkedResponse) manna.Stream {
	t.Helper()
	srv := httptest.NewServer(resp.handler())
	t.Cleanup(srv.Close)
	s, err := openai.New(srv.URL, "tok").Stream(context.Background(), manna.Request{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func collectDeltas(t *testing.T, s manna.Stream) []string {
	t.Helper()
	var deltas []string
	for {
		evt, err := s.Next()
		if errors.Is(err, io.EOF) {
			return deltas
		}
		require.NoError(t, err)
		deltas = append(deltas, evt.(manna.EventTextDelta).Delta)
	}
}

func TestStream_AccumulatesDeltas(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{
		": connected\n\n",
		delta("The Lord "),
		delta("is my "),
		delta("shepherd"),
		"data: [DONE]\n\n",
	})

	assert.Equal(t, []string{"The Lord ", "is my ", "shepherd"}, collectDeltas(t, s))
	assert.Equal(t, manna.StreamStateComplete, s.State())
	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, "The Lord is my shepherd", reply)
}

func TestStream_OnlyDone(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{"data: [DONE]\n"})

	assert.Empty(t, collectDeltas(t, s))
	assert.Equal(t, manna.StreamStateComplete, s.State())
	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestStream_FrameSplitAcrossChunks(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{
		`data: {"choices":[{"delta":{"con`,
		`tent":"tinued"}}]}` + "\n",
		"data: [DONE]\n",
	})

	assert.Equal(t, []string{"tinued"}, collectDeltas(t, s))
	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, "tinued", reply)
}

func TestStream_ChunkBoundaryInvariance(t *testing.T) {
	t.Parallel()
	body := delta("Blessed ") + ": ping\r\n" + delta("are the ") + delta("meek ✝") + "data: [DONE]\n"

	for _, i := range []int{1, 7, 40, len(delta("Blessed ")), len(body) - 3, len(body) - 1} {
		s := streamFrom(t, chunkedResponse{body[:i], body[i:]})
		collectDeltas(t, s)
		reply, err := s.Reply()
		require.NoError(t, err)
		assert.Equal(t, "Blessed are the meek ✝", reply, "split at %d", i)
	}
}

func TestStream_CRLFTerminators(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{
		strings.ReplaceAll(delta("Amen"), "\n", "\r\n"),
		"data: [DONE]\r\n",
	})
	assert.Equal(t, []string{"Amen"}, collectDeltas(t, s))
}

func TestStream_IgnoresNonDataAndEmptyDeltas(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{
		"event: message\n",
		"retry: 1000\n",
		`data: {"choices":[{"delta":{"role":"assistant"}}]}` + "\n",
		`data: {"choices":[]}` + "\n",
		delta("Grace"),
		"data: [DONE]\n",
	})
	assert.Equal(t, []string{"Grace"}, collectDeltas(t, s))
}

func TestStream_EndsWithoutDone(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{delta("Peace"), `data: {"choices":[{"delta":{"content":" be with you"}}]}`})

	assert.Equal(t, []string{"Peace", " be with you"}, collectDeltas(t, s))
	assert.Equal(t, manna.StreamStateComplete, s.State())
}

func TestStream_LinesAfterDoneAreFlushed(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{delta("a") + "data: [DONE]\n" + delta("b") + "data: [DONE]\n" + delta("c")})

	assert.Equal(t, []string{"a", "b"}, collectDeltas(t, s))
}

func TestStream_MalformedFrameStallsUntilFlush(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{
		delta("first"),
		"data: {not json\n",
		delta("second"),
	})

	assert.Equal(t, []string{"first", "second"}, collectDeltas(t, s))
	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, "firstsecond", reply)
}

func TestStream_MidStreamFailureKeepsPartial(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10000")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, delta("In the beginning"))
		w.(http.Flusher).Flush()
		// Returning short of the declared length drops the connection.
	}))
	t.Cleanup(srv.Close)

	s, err := openai.New(srv.URL, "tok").Stream(context.Background(), manna.Request{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, manna.EventTextDelta{Delta: "In the beginning"}, evt)

	_, err = s.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Equal(t, manna.StreamStateError, s.State())

	reply, rerr := s.Reply()
	require.NoError(t, rerr)
	assert.Equal(t, "In the beginning", reply)

	_, again := s.Next()
	assert.Equal(t, err, again)
}

func TestStream_Cancellation(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, delta("Blessed"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	s, err := openai.New(srv.URL, "tok").Stream(ctx, manna.Request{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.Next()
	require.NoError(t, err)

	cancel()
	_, err = s.Next()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream_ReplyBeforeNext(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{"data: [DONE]\n"})
	_, err := s.Reply()
	assert.ErrorIs(t, err, manna.ErrStreamNotReady)
}

func TestStream_NextAfterClose(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, chunkedResponse{delta("x"), "data: [DONE]\n"})
	require.NoError(t, s.Close())

	assert.Equal(t, manna.StreamStateClosed, s.State())
	_, err := s.Next()
	assert.ErrorIs(t, err, manna.ErrStreamClosed)
}
