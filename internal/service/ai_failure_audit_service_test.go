package service

import (
	"context"
	"sync"
	"testing"

	"hearth-chat-be/pkg/events"
)

type recordingLog struct {
	mu      sync.Mutex
	entries []map[string]interface{}
}

func (l *recordingLog) Debug(string, string, map[string]interface{}) {}
func (l *recordingLog) Info(string, string, map[string]interface{})  {}
func (l *recordingLog) Error(string, string, map[string]interface{}) {}
func (l *recordingLog) Sync() error                                  { return nil }

func (l *recordingLog) Warn(_, _ string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, details)
}

func TestAIFailureAuditRecord(t *testing.T) {
	log := &recordingLog{}
	svc := NewAIFailureAuditService(nil, log).(*aiFailureAuditService)

	event := events.NewAIFailed(7, "gemini", "connection refused")
	if err := svc.record(context.Background(), event); err != nil {
		t.Fatalf("record() error = %v", err)
	}

	if len(log.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(log.entries))
	}
	entry := log.entries[0]
	if entry["provider"] != "gemini" || entry["reason"] != "connection refused" {
		t.Errorf("audit entry = %v", entry)
	}
}
