// Package dispatch turns a compiled action.Occurrence into the external
// effect its Kind names: an HTTP POST, a file append, or a log line for the
// in-process Noop consumer. It is the one piece of the engine that performs
// real I/O on an occurrence's behalf, following pkg/database/client.go's
// functional-option construction pattern.
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/stacks-network/chainhook-engine/pkg/action"
)

// Sink dispatches occurrences to their configured external target. A Sink
// is safe for concurrent use by multiple replay drivers; file appends are
// serialised with an internal mutex since os.File writes from concurrent
// goroutines can interleave.
type Sink struct {
	http   *http.Client
	fileMu sync.Mutex
	logger *log.Logger
}

// Option configures a Sink at construction time.
type Option func(*Sink)

// WithLogger overrides the default stderr logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

// WithHTTPTimeout overrides the default 10s webhook request timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(s *Sink) { s.http.Timeout = timeout }
}

// NewSink builds a Sink ready to dispatch any occurrence kind.
func NewSink(opts ...Option) *Sink {
	sink := &Sink{
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: log.New(log.Writer(), "[dispatch] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

// Dispatch delivers occ to the target its Kind names. A non-nil error means
// the delivery did not happen; the caller (pkg/replay.Driver) treats this as
// a per-occurrence failure, not one that aborts the scan.
func (s *Sink) Dispatch(ctx context.Context, occ action.Occurrence) error {
	switch occ.Kind {
	case action.OccurrenceHttp:
		return s.dispatchHTTP(ctx, occ.Http)
	case action.OccurrenceFile:
		return s.dispatchFile(occ.File)
	case action.OccurrenceData:
		return s.dispatchData(occ.Data)
	default:
		return fmt.Errorf("dispatch: unknown occurrence kind %q", occ.Kind)
	}
}

func (s *Sink) dispatchHTTP(ctx context.Context, occ *action.HttpOccurrence) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, occ.URL, bytes.NewReader(occ.Body))
	if err != nil {
		return fmt.Errorf("dispatch: build request: %w", err)
	}
	req.Header.Set("Content-Type", occ.ContentType)
	if occ.AuthorizationHeader != "" {
		req.Header.Set("Authorization", occ.AuthorizationHeader)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch: post %s: %w", occ.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("dispatch: %s responded %s", occ.URL, resp.Status)
	}
	return nil
}

func (s *Sink) dispatchFile(occ *action.FileOccurrence) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	f, err := os.OpenFile(occ.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("dispatch: open %s: %w", occ.Path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(occ.Bytes, '\n')); err != nil {
		return fmt.Errorf("dispatch: append to %s: %w", occ.Path, err)
	}
	return nil
}

// dispatchData is the Noop action's target: nothing outside the process
// consumes it, so the occurrence is simply logged through the Sink's logger.
func (s *Sink) dispatchData(occ *action.DataOccurrence) error {
	s.logger.Printf("data occurrence: %s", occ.Payload)
	return nil
}
