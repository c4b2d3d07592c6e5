/*
Package ports defines the driven ports (interfaces) of the simflow engine.

These interfaces decouple the form-flow runtime from external implementations,
allowing sessions to be checkpointed to any storage backend and form
definitions to be read from any source.

# Key Interfaces

  - FormLoader: Resolves form definitions by id (e.g., from a directory or memory).
  - StateStore: Persists and loads the FormState of a session after each mutation.
  - DistributedLocker: Provides distributed locking for concurrent access to one session.
*/
package ports
