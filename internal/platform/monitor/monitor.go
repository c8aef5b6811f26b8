// Package monitor emits named events to a monitoring sink, fire-and-forget.
// Emit failures never propagate; the primary operation always wins
package monitor

import (
	"context"
	"encoding/json"
	"time"

	"coursehub/internal/platform/logger"
	chx "coursehub/internal/platform/store/ch"

	"github.com/google/uuid"
)

// Event is one named occurrence with a free-form attribute map
type Event struct {
	Name      string
	RequestID string
	At        time.Time
	Attrs     map[string]any
}

// Sink receives events; implementations must never return the emit outcome
// to the caller's critical path
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// NewCH returns a Sink writing events to the course_events table via async
// inserts; write failures are logged at debug and dropped
func NewCH(c *chx.CH, log logger.Logger) Sink {
	return &chSink{c: c, log: log}
}

type chSink struct {
	c   *chx.CH
	log logger.Logger
}

const insertEvent = `INSERT INTO course_events (event_id, name, request_id, at, attrs) VALUES ($1, $2, $3, $4, $5)`

func (s *chSink) Emit(ctx context.Context, ev Event) {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	attrs, err := json.Marshal(ev.Attrs)
	if err != nil {
		s.log.Debug().Err(err).Str("event", ev.Name).Msg("event attrs not serializable")
		attrs = []byte("{}")
	}
	if err := s.c.AsyncInsert(ctx, insertEvent, false,
		uuid.NewString(), ev.Name, ev.RequestID, at, string(attrs)); err != nil {
		s.log.Debug().Err(err).Str("event", ev.Name).Msg("event emit failed")
	}
}

// NewLog returns a Sink that logs events; used when clickhouse is disabled
func NewLog(log logger.Logger) Sink {
	return &logSink{log: log}
}

type logSink struct{ log logger.Logger }

func (s *logSink) Emit(_ context.Context, ev Event) {
	s.log.Info().
		Str("event", ev.Name).
		Str("request_id", ev.RequestID).
		Interface("attrs", ev.Attrs).
		Msg("event")
}

// Nop returns a Sink that drops everything; handy in tests
func Nop() Sink { return nopSink{} }

type nopSink struct{}

func (nopSink) Emit(context.Context, Event) {}
