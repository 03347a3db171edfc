// Package collector assembles an incrementally delivered upstream payload
// into one buffer under a wall-clock limit and a byte ceiling. It knows
// nothing about what the bytes mean.
package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"aigate-api/internal/shared"
)

// Source is a pull iterator over byte chunks. Next returns io.EOF once the
// stream is exhausted; a final chunk may accompany io.EOF. Close must unblock
// a pending Next.
type Source interface {
	Next() ([]byte, error)
	Close() error
}

type Limits struct {
	Timeout  time.Duration
	MaxBytes int
}

func DefaultLimits() Limits {
	return Limits{Timeout: shared.StreamTimeout, MaxBytes: shared.StreamMaxBytes}
}

type pulled struct {
	chunk []byte
	err   error
}

// Collect drains src until io.EOF. Exceeding either limit, a read error, a
// cancelled ctx or an empty stream all yield a PROVIDER_FAILURE tagged with
// provider, and no partial buffer is returned. src is always closed.
func Collect(ctx context.Context, provider string, src Source, limits Limits) ([]byte, error) {
	defer func() {
		_ = src.Close()
	}()

	results := make(chan pulled)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			chunk, err := src.Next()
			select {
			case results <- pulled{chunk: chunk, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	deadline := time.NewTimer(limits.Timeout)
	defer deadline.Stop()

	var buf bytes.Buffer
	for {
		select {
		case <-deadline.C:
			return nil, shared.NewProviderError(provider, shared.KindProviderFailure,
				fmt.Sprintf("stream exceeded time limit of %s", limits.Timeout), nil)
		case <-ctx.Done():
			return nil, shared.NewProviderError(provider, shared.KindProviderFailure,
				"stream aborted", ctx.Err())
		case p := <-results:
			if len(p.chunk) > 0 {
				if buf.Len()+len(p.chunk) > limits.MaxBytes {
					return nil, shared.NewProviderError(provider, shared.KindProviderFailure,
						fmt.Sprintf("stream exceeded size limit of %d bytes", limits.MaxBytes), nil)
				}
				buf.Write(p.chunk)
			}
			if p.err == nil {
				continue
			}
			if !errors.Is(p.err, io.EOF) {
				return nil, shared.NewProviderError(provider, shared.KindProviderFailure,
					"stream read failed", p.err)
			}
			if buf.Len() == 0 {
				return nil, shared.NewProviderError(provider, shared.KindProviderFailure,
					"stream produced no data", nil)
			}
			return buf.Bytes(), nil
		}
	}
}

type readerSource struct {
	r    io.ReadCloser
	size int
}

// ReaderSource adapts a response body into a Source of chunkSize reads.
func ReaderSource(r io.ReadCloser, chunkSize int) Source {
	if chunkSize <= 0 {
		chunkSize = shared.StreamChunkSize
	}
	return &readerSource{r: r, size: chunkSize}
}

func (s *readerSource) Next() ([]byte, error) {
	buf := make([]byte, s.size)
	n, err := s.r.Read(buf)
	return buf[:n], err
}

func (s *readerSource) Close() error {
	return s.r.Close()
}

type bytesSource struct {
	b    []byte
	done bool
}

// BytesSource yields b as a single chunk. Used for providers that return
// their payload in one response so every payload passes the same limits.
func BytesSource(b []byte) Source {
	return &bytesSource{b: b}
}

func (s *bytesSource) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.b, io.EOF
}

func (s *bytesSource) Close() error {
	return nil
}
