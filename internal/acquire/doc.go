// Package acquire implements the acquisition pipeline: searching the
// download backend for candidates, monitoring transfers to completion,
// and the retry-with-backoff orchestration that ties them together.
//
// The pieces compose bottom-up:
//
//   - Tracker: in-memory per-track state (active/completed/failed),
//     preventing duplicate concurrent acquisition of the same track.
//   - Searcher: the submit → poll → collect → delete search protocol.
//   - Monitor: the initiate → poll → terminal-state transfer protocol.
//   - Orchestrator: the per-track retry state machine and batched
//     concurrent processing of track lists.
//
// The error policy throughout is that expected failures (a network call,
// an empty search, a dead transfer) become empty/false results that count
// against the attempt budget; only budget exhaustion is terminal, and it
// is surfaced as a boolean, not an error.
package acquire
