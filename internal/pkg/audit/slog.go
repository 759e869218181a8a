// Package audit provides an asynchronous audit trail backed by slog.
package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
)

const defaultBufferSize = 256

// SlogSink writes audit events to a structured logger on a background
// goroutine. Record never blocks: when the buffer is full the event is
// dropped and a counter incremented.
type SlogSink struct {
	logger  *slog.Logger
	events  chan audit.Event
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	dropped int64
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	s := &SlogSink{
		logger: logger,
		events: make(chan audit.Event, defaultBufferSize),
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *SlogSink) Record(event audit.Event) {
	select {
	case s.events <- event:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (s *SlogSink) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close flushes buffered events and stops the background goroutine.
func (s *SlogSink) Close() {
	s.once.Do(func() {
		close(s.events)
		<-s.done
	})
}

func (s *SlogSink) drain() {
	defer close(s.done)
	for event := range s.events {
		s.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit",
			slog.String("actor", event.Actor),
			slog.String("action", event.Action),
			slog.String("entity_type", event.EntityType),
			slog.String("entity_id", event.EntityID),
			slog.Any("detail", event.Detail),
			slog.Time("at", event.At),
		)
	}
}
