package events

import (
	"context"
	"log/slog"
	"sync"
)

// Memory records events in order; for tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Emit(_ context.Context, event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of everything emitted so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event{}, m.events...)
}

// ByKind filters recorded events.
func (m *Memory) ByKind(kind Kind) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Logging emits every event to a structured logger. It is the fallback sink
// when no broker is configured.
type Logging struct {
	logger *slog.Logger
}

func NewLogging(logger *slog.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Emit(ctx context.Context, event Event) {
	l.logger.InfoContext(ctx, "lifecycle event",
		"event_id", event.ID,
		"kind", event.Kind,
		"agent", event.Agent,
		"challenge_type", event.ChallengeType,
		"maintenance", event.Maintenance,
		"outcome", event.Outcome,
		"reputation", event.Reputation,
	)
}

func (l *Logging) Close() error { return nil }
