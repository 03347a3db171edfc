package collector

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"aigate-api/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource replays chunks with an optional delay before each one.
type fakeSource struct {
	chunks [][]byte
	delay  time.Duration
	err    error

	mu     sync.Mutex
	i      int
	closed chan struct{}
	once   sync.Once
}

func newFakeSource(delay time.Duration, chunks ...string) *fakeSource {
	s := &fakeSource{delay: delay, closed: make(chan struct{})}
	for _, c := range chunks {
		s.chunks = append(s.chunks, []byte(c))
	}
	return s
}

func (s *fakeSource) Next() ([]byte, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-s.closed:
			return nil, errors.New("closed")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.i >= len(s.chunks) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	c := s.chunks[s.i]
	s.i++
	return c, nil
}

func (s *fakeSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSource) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func requireProviderFailure(t *testing.T, err error, contains string) {
	t.Helper()
	rerr, ok := shared.AsRequestError(err)
	require.True(t, ok, "expected RequestError, got %v", err)
	assert.Equal(t, shared.KindProviderFailure, rerr.Kind)
	assert.Equal(t, "fake", rerr.Provider)
	assert.Contains(t, rerr.Message, contains)
}

func TestCollectAssemblesChunks(t *testing.T) {
	src := newFakeSource(0, "ab", "cd", "e")
	out, err := Collect(context.Background(), "fake", src, Limits{Timeout: time.Second, MaxBytes: 10})
	require.NoError(t, err)
	assert.Equal(t, "abcde", string(out))
	assert.True(t, src.isClosed())
}

func TestCollectByteCeiling(t *testing.T) {
	// ceiling is crossed by the third chunk
	src := newFakeSource(0, "aaaa", "bbbb", "cccc", "dddd")
	out, err := Collect(context.Background(), "fake", src, Limits{Timeout: time.Second, MaxBytes: 10})
	requireProviderFailure(t, err, "size limit")
	assert.Len(t, out, 0)
	assert.True(t, src.isClosed())
}

func TestCollectExactlyAtCeilingSucceeds(t *testing.T) {
	src := newFakeSource(0, "aaaaa", "bbbbb")
	out, err := Collect(context.Background(), "fake", src, Limits{Timeout: time.Second, MaxBytes: 10})
	require.NoError(t, err)
	assert.Len(t, out, 10)
}

func TestCollectTimeoutOnSlowChunks(t *testing.T) {
	src := newFakeSource(200*time.Millisecond, "a", "b")
	start := time.Now()
	out, err := Collect(context.Background(), "fake", src, Limits{Timeout: 50 * time.Millisecond, MaxBytes: 1 << 20})
	requireProviderFailure(t, err, "time limit")
	assert.Nil(t, out)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.True(t, src.isClosed())
}

func TestCollectTimeoutAcrossManyFastChunks(t *testing.T) {
	chunks := make([]string, 100)
	for i := range chunks {
		chunks[i] = "x"
	}
	src := newFakeSource(5*time.Millisecond, chunks...)
	_, err := Collect(context.Background(), "fake", src, Limits{Timeout: 60 * time.Millisecond, MaxBytes: 1 << 20})
	requireProviderFailure(t, err, "time limit")
}

func TestCollectEmptyStream(t *testing.T) {
	src := newFakeSource(0)
	_, err := Collect(context.Background(), "fake", src, Limits{Timeout: time.Second, MaxBytes: 10})
	requireProviderFailure(t, err, "no data")
}

func TestCollectReadError(t *testing.T) {
	src := newFakeSource(0, "abc")
	src.err = errors.New("connection reset")
	_, err := Collect(context.Background(), "fake", src, Limits{Timeout: time.Second, MaxBytes: 10})
	requireProviderFailure(t, err, "read failed")
}

func TestCollectContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := newFakeSource(time.Second, "a")
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := Collect(ctx, "fake", src, Limits{Timeout: 5 * time.Second, MaxBytes: 10})
	requireProviderFailure(t, err, "aborted")
}

func TestReaderSource(t *testing.T) {
	body := io.NopCloser(strings.NewReader(strings.Repeat("z", 100)))
	out, err := Collect(context.Background(), "fake", ReaderSource(body, 7), Limits{Timeout: time.Second, MaxBytes: 1000})
	require.NoError(t, err)
	assert.Len(t, out, 100)
}

func TestBytesSource(t *testing.T) {
	out, err := Collect(context.Background(), "fake", BytesSource([]byte("audio")), DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "audio", string(out))

	_, err = Collect(context.Background(), "fake", BytesSource(nil), DefaultLimits())
	requireProviderFailure(t, err, "no data")
}
