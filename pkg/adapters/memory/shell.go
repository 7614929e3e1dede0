package memory

import (
	"sync"

	"github.com/aretw0/promowizard/pkg/domain"
)

// ShellEventKind identifies a recorded shell signal.
type ShellEventKind string

const (
	ShellNotify   ShellEventKind = "notify"
	ShellClose    ShellEventKind = "close"
	ShellNavigate ShellEventKind = "navigate"
)

// ShellEvent is one signal received by a Shell.
type ShellEvent struct {
	Kind         ShellEventKind       `json:"kind"`
	Notification *domain.Notification `json:"notification,omitempty"`
	RecordID     string               `json:"recordId,omitempty"`
}

// Shell implements ports.Shell by queueing signals until drained.
type Shell struct {
	mu     sync.Mutex
	events []ShellEvent
}

// NewShell creates an empty recording shell.
func NewShell() *Shell {
	return &Shell{}
}

func (s *Shell) CloseRequested() {
	s.record(ShellEvent{Kind: ShellClose})
}

func (s *Shell) NavigateToRecord(id string) {
	s.record(ShellEvent{Kind: ShellNavigate, RecordID: id})
}

func (s *Shell) Notify(n domain.Notification) {
	s.record(ShellEvent{Kind: ShellNotify, Notification: &n})
}

func (s *Shell) record(e ShellEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Drain returns the queued signals and clears the queue.
func (s *Shell) Drain() []ShellEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

// Notifications returns the queued notifications without draining.
func (s *Shell) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, e := range s.events {
		if e.Notification != nil {
			out = append(out, *e.Notification)
		}
	}
	return out
}
