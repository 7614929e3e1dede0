package memory

import "sync"

// ShellRegistry keeps one recording shell per session. Request/response hosts
// drain the shell of a session after each call to return the signals it emitted.
type ShellRegistry struct {
	mu     sync.Mutex
	shells map[string]*Shell
}

// NewShellRegistry creates an empty registry.
func NewShellRegistry() *ShellRegistry {
	return &ShellRegistry{shells: make(map[string]*Shell)}
}

// For returns the shell of a session, creating it on first use.
func (r *ShellRegistry) For(sessionID string) *Shell {
	r.mu.Lock()
	defer r.mu.Unlock()
	sh, ok := r.shells[sessionID]
	if !ok {
		sh = NewShell()
		r.shells[sessionID] = sh
	}
	return sh
}

// Drop forgets the shell of a session.
func (r *ShellRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shells, sessionID)
}

// Len returns the number of tracked shells.
func (r *ShellRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shells)
}
