/*
Package observability turns wizard lifecycle events into Prometheus metrics and
structured log lines.

Hooks returns a domain.LifecycleHooks value that can be passed to wizard.New via
wizard.WithLifecycleHooks; Combine merges it with hooks supplied by the host.
*/
package observability
