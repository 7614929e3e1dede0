/*
Package ports defines the driven ports (interfaces) of the promotion wizard.

These interfaces decouple the wizard core from external implementations, allowing
it to work with various catalog sources, submit backends, host shells and
session storage.

# Key Interfaces

  - CatalogService: Fetches one page of catalog products.
  - SubmitService: Creates the promotion from an assembled payload.
  - Shell: Receives the produced signals (close, navigate, notify) of a wizard.
  - SessionStore: Persists session records between host calls.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
