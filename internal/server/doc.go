// Package server implements the healthwatch ingestion and query surface.
//
// Owns:
//   - HTTP routing, handlers, and request/response contracts
//   - Report validation and the error taxonomy mapping (400 vs 500)
//   - The append-only report log (Store implementations)
//   - Latest-per-machine aggregation, filtering, and CSV export
//
// Does not own:
//   - Agent-side probing, change detection, and retry policy
//   - UI rendering beyond serving static files
//
// Invariants:
//   - The report log is append-only; reports are never updated or deleted
//   - Machine state is a pure read-time projection (max timestamp, ties
//     broken by append order), never a stored record
//   - Unknown check results are preserved distinctly from false everywhere,
//     including CSV cells
package server
