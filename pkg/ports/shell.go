package ports

import "github.com/aretw0/promowizard/pkg/domain"

// Shell is the host UI surrounding a wizard. It receives the signals a wizard
// produces; how they are presented is up to the host.
type Shell interface {
	// CloseRequested asks the host to close the wizard.
	CloseRequested()

	// NavigateToRecord asks the host to open the detail view of a created record.
	NavigateToRecord(id string)

	// Notify emits a toast-style notification.
	Notify(n domain.Notification)
}

// NopShell discards every signal.
type NopShell struct{}

func (NopShell) CloseRequested()            {}
func (NopShell) NavigateToRecord(string)    {}
func (NopShell) Notify(domain.Notification) {}
