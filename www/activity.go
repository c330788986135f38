package www

import (
	"fmt"
	"sync"
	"time"

	"eaisdo/engine"
)

// activityEntry is one line of the diagnostics activity feed.
type activityEntry struct {
	Time time.Time
	Text string
}

// activityLog keeps the most recent engine events in memory.
type activityLog struct {
	mu      sync.Mutex
	size    int
	entries []activityEntry
}

func newActivityLog(size int) *activityLog {
	return &activityLog{size: size}
}

func (a *activityLog) subscribe(bus *engine.EventBus) int {
	return bus.Subscribe(func(evt engine.Event) {
		if text := describe(evt); text != "" {
			a.add(activityEntry{Time: evt.Timestamp, Text: text})
		}
	})
}

func (a *activityLog) add(e activityEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	if len(a.entries) > a.size {
		a.entries = a.entries[len(a.entries)-a.size:]
	}
}

// Recent returns the entries newest first.
func (a *activityLog) Recent() []activityEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]activityEntry, len(a.entries))
	for i, e := range a.entries {
		out[len(a.entries)-1-i] = e
	}
	return out
}

func describe(evt engine.Event) string {
	switch ev := evt.Payload.(type) {
	case engine.NodeCreatedEvent:
		return fmt.Sprintf("Добавлен узел %s (%s)", ev.NodeName, ev.District)
	case engine.NodeUpdatedEvent:
		return fmt.Sprintf("Обновлён узел %s (id %s)", ev.NodeName, ev.NodeID)
	case engine.NodeDeletedEvent:
		return fmt.Sprintf("Удалён узел id %s", ev.NodeID)
	case engine.RegistryErrorEvent:
		return fmt.Sprintf("Ошибка реестра (%s): %v", ev.Op, ev.Err)
	case engine.SessionEvent:
		switch evt.Type {
		case engine.EventLoginSucceeded:
			return "Вход: " + ev.Username
		case engine.EventLoginFailed:
			return "Неудачный вход: " + ev.Username
		case engine.EventLogout:
			return "Выход: " + ev.Username
		}
	case engine.ConnectionEvent:
		return ev.Detail
	}
	return ""
}
