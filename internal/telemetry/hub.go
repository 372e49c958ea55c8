package telemetry

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/MIAOUS-group/go-port-contention/internal/frame"
	"github.com/MIAOUS-group/go-port-contention/internal/logging"
)

// Reporter captures covert-channel lifecycle events for observers.
type Reporter interface {
	ReportRequest(event RequestEvent)
	ReportSend(event SendEvent)
}

// RequestEvent records the outcome of one receiver.Controller.Listen call.
type RequestEvent struct {
	Timestamp       time.Time `json:"timestamp"`
	Valid           bool      `json:"valid"`
	InitSeq         int       `json:"initSeq"`
	SequenceNumber  int       `json:"sequenceNumber"`
	TimedOut        bool      `json:"timedOut"`
	WinningListener int       `json:"winningListener"`
}

// SendEvent records one sender.Controller.Send call.
type SendEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	SequenceNumber int       `json:"sequenceNumber"`
	Data           byte      `json:"data"`
	Cores          int       `json:"cores"`
}

// ProcessMetrics captures runtime state for diagnostics.
type ProcessMetrics struct {
	StartTime    time.Time     `json:"startTime"`
	Uptime       time.Duration `json:"uptime"`
	NumGoroutine int           `json:"numGoroutine"`
}

// HealthStatus surfaces overall process health.
type HealthStatus struct {
	Status  string         `json:"status"`
	Process ProcessMetrics `json:"process"`
}

// Hub collects recent request/send events and fans out live updates.
type Hub struct {
	mu           sync.RWMutex
	requests     []RequestEvent
	sends        []SendEvent
	historyLimit int
	subscribers  map[chan RequestEvent]struct{}
	logger       logging.Logger
	startTime    time.Time
}

// NewHub builds a telemetry hub retaining at most historyLimit events of each kind.
func NewHub(historyLimit int, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	if historyLimit <= 0 {
		historyLimit = 256
	}
	return &Hub{
		historyLimit: historyLimit,
		subscribers:  make(map[chan RequestEvent]struct{}),
		logger:       logger.With(logging.Subsystem("telemetry")),
		startTime:    time.Now(),
	}
}

// ReportRequest implements Reporter.
func (h *Hub) ReportRequest(event RequestEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	h.mu.Lock()
	h.requests = append(h.requests, event)
	if len(h.requests) > h.historyLimit {
		h.requests = h.requests[len(h.requests)-h.historyLimit:]
	}
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	h.mu.Unlock()

	if !event.TimedOut {
		// The winning listener decoded one full request frame of bits.
		BitsDecoded.Add(frame.RequestFrameSize)
	}
	if event.Valid {
		RequestFramesValid.Inc()
	} else if event.TimedOut {
		ListenerTimeouts.Inc()
	} else {
		RequestFramesInvalid.Inc()
	}
}

// ReportSend implements Reporter.
func (h *Hub) ReportSend(event SendEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	h.mu.Lock()
	h.sends = append(h.sends, event)
	if len(h.sends) > h.historyLimit {
		h.sends = h.sends[len(h.sends)-h.historyLimit:]
	}
	h.mu.Unlock()
	DataFramesSent.Inc()
}

// RequestHistory returns a copy of stored request events.
func (h *Hub) RequestHistory() []RequestEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]RequestEvent, len(h.requests))
	copy(out, h.requests)
	return out
}

// SendHistory returns a copy of stored send events.
func (h *Hub) SendHistory() []SendEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]SendEvent, len(h.sends))
	copy(out, h.sends)
	return out
}

// Subscribe registers a listener for live request events.
func (h *Hub) Subscribe() (chan RequestEvent, func()) {
	ch := make(chan RequestEvent, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		close(ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) processMetrics() ProcessMetrics {
	return ProcessMetrics{
		StartTime:    h.startTime,
		Uptime:       time.Since(h.startTime),
		NumGoroutine: runtime.NumGoroutine(),
	}
}

func (h *Hub) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, struct {
		Requests []RequestEvent `json:"requests"`
		Sends    []SendEvent    `json:"sends"`
	}{h.RequestHistory(), h.SendHistory()})
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, HealthStatus{Status: "ok", Process: h.processMetrics()})
}

// handleLive streams request events as newline-delimited JSON until the
// client disconnects or the request context is cancelled.
func (h *Hub) handleLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ch, cancel := h.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := enc.Encode(event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
