// Package launcher coordinates rounds: it owns the family registry, the
// instance store and the dispatcher, and is the only layer the CLI and the
// HTTP API talk to. It is structured into small files by concern:
//
//   - launcher.go: Launcher type, Config, constructor, instance management.
//   - round.go: Run, which renders every instance and dispatches a round.
//   - status.go: Status reporting.
//   - errors.go: error types and helpers (IsUnknownFamily, IsInvalid).
//   - events.go, eventpub_memory.go: lifecycle events.
//   - metrics.go: round counters.
//
// Rendering and URL normalization happen synchronously before fan-out, so the
// store is never mutated while requests referencing it are in flight.
package launcher
