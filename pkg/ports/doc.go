/*
Package ports defines the driven ports (interfaces) for the Veritor engine.

These interfaces decouple the orchestration core from external
implementations, allowing the engine to work with any answer-generation
backend and any checkpoint persistence.

# Key Interfaces

  - Agent: An external, domain-specialized answer-generation capability.
  - CheckpointStore: Persists execution snapshots keyed by conversation thread.
  - DistributedLocker: Serializes checkpoint access per thread across replicas.
*/
package ports
