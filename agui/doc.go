// Package agui streams extraction progress using the AG-UI protocol.
//
// AG-UI is an event-based protocol for connecting agent backends to
// user-facing applications. This package maps extraction state changes and
// backend attempts onto AG-UI events so a frontend can follow a long
// selection call as it falls back across backends and retries.
//
// # Event Mapping
//
//   - extraction Building (first attempt) → STEP_STARTED named after the task
//   - extraction Retry → CUSTOM "extract_retry"
//   - extraction Success or Exhausted → STEP_FINISHED
//   - every backend attempt → CUSTOM "backend_attempt"
//   - the value returned by the run → CUSTOM "result"
//
// A [Mapper] wraps a run with RUN_STARTED and RUN_FINISHED, or RUN_ERROR
// when the run fails.
//
// The package does not write HTTP responses; cmd/serve encodes the events
// as Server-Sent Events.
//
// # Thread Safety
//
// A Mapper holds only its IDs and may be shared. [Mapper.Stream] owns the
// channels it creates.
package agui
