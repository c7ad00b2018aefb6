// Package baseline stores prior exports for same-origin update workflows.
//
// An update run needs the previous export from the same source system as its
// base. A Store keeps exports keyed by origin (a caller-chosen name for the
// source system) so a pipeline can fetch the latest baseline, run the update
// engine against a fresh export, and save the result as the new baseline.
//
// MemoryStore serves tests and single-process pipelines; RedisStore persists
// baselines across processes.
//
// Records serialize through the model's json tags; unknown-field Extra data
// is a serialization-layer concern and does not round-trip through a store.
package baseline
