package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for webhook traffic and ticket
// lifecycle activity.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	ticketsOpened map[string]int64
	ticketsClosed int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		ticketsOpened: make(map[string]int64),
	}
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordTicketOpened counts a ticket creation per kind.
func (m *Metrics) RecordTicketOpened(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketsOpened[kind]++
}

// RecordTicketClosed counts a completed ticket deletion.
func (m *Metrics) RecordTicketClosed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketsClosed++
}

// TicketsOpened returns a copy of the per-kind open counters.
func (m *Metrics) TicketsOpened() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.ticketsOpened))
	for kind, count := range m.ticketsOpened {
		out[kind] = count
	}
	return out
}

// TicketsClosed returns the closed-ticket counter.
func (m *Metrics) TicketsClosed() int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticketsClosed
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
