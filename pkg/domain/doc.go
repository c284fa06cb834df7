/*
Package domain contains the core domain models for the Veritor engine.

It defines the fundamental entities of the orchestration pipeline, such as the
ExecutionState threaded through every node, the closed set of node names and
decisions that make up the state machine, and the classified validation issues
that drive retry-versus-fallback branching. This package is kept pure and free
of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - ExecutionState: The single mutable record for one request (query, intent,
    attempts, agent output, validation results, final response, node history).
  - NodeName / Decision: Typed constants replacing stringly-typed transitions.
  - ValidationIssue: A validator finding, classified as content or technical.
  - CheckpointSnapshot: A persisted copy of ExecutionState keyed by thread.
*/
package domain
