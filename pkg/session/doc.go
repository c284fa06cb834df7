/*
Package session provides safe concurrent access to conversation checkpoints.

The Manager enforces single-writer-per-thread discipline: two concurrent
turns of the same conversation can never corrupt each other's snapshot, while
unrelated threads require no coordination. Locking is two-level: a
reference-counted in-process mutex per thread, plus an optional distributed
locker for multi-replica deployments.
*/
package session
