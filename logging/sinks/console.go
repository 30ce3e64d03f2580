package sinks

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"

	"dust-and-lead/server/logging"
)

// ConsoleSink writes each event as a single JSON line to stderr.
type ConsoleSink struct {
	mu          sync.Mutex
	logger      *log.Logger
	minSeverity logging.Severity
}

func NewConsoleSink(minSeverity logging.Severity) *ConsoleSink {
	return &ConsoleSink{
		logger:      log.New(os.Stderr, "", 0),
		minSeverity: minSeverity,
	}
}

func (s *ConsoleSink) Publish(_ context.Context, event logging.Event) {
	if event.Severity < s.minSeverity {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.logger.Println(string(data))
	s.mu.Unlock()
}

var _ logging.Publisher = (*ConsoleSink)(nil)
