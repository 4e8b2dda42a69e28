package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	BrainCycleStart         EventType = "BRAIN_CYCLE_START"
	BrainCycleComplete      EventType = "BRAIN_CYCLE_COMPLETE"
	PublishingCycleStart    EventType = "PUBLISHING_CYCLE_START"
	PublishingCycleComplete EventType = "PUBLISHING_CYCLE_COMPLETE"
	DecisionCreated         EventType = "DECISION_CREATED"
	PostPublished           EventType = "POST_PUBLISHED"
	PostPublishFailed       EventType = "POST_PUBLISH_FAILED"
	SnapshotUploaded        EventType = "SNAPSHOT_UPLOADED"
	ErrorOccurred           EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Handler receives emitted events. Handlers must not block; fan-out is
// best-effort and a panicking handler is isolated from the emitter.
type Handler func(evt Event)

// Manager handles event emission, logging and subscriber fan-out
type Manager struct {
	log zerolog.Logger

	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:      log.With().Str("service", "events").Logger(),
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for an event type
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Emit emits an event
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	eventJSON, _ := json.Marshal(event)
	m.log.Info().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	for _, h := range handlers {
		m.dispatch(h, event)
	}
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	data := map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	}
	m.Emit(ErrorOccurred, module, data)
}

func (m *Manager) dispatch(h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().
				Interface("panic", r).
				Str("event_type", string(evt.Type)).
				Msg("Event handler panicked")
		}
	}()
	h(evt)
}
