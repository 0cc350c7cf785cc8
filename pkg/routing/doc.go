// Package routing drives the multi-model fallback retry chain.
//
// A request is attempted against the current model first, then against the
// configured fallback models in declared order. Attempt outcomes are
// classified from the adapter's typed errors:
//
//   - success: the failure counter resets; if the winning model is not the
//     current model it is promoted, so later requests try the last known
//     good model first (sticky promotion)
//   - client error (4xx, including 429): a short fixed delay, then the
//     next model
//   - transport error (network failure, timeout, 5xx): a longer fixed
//     delay, then the next model
//
// Both delays are fixed rather than exponential, and never configurable
// per request. Exhausting the chain fails that request only; the model
// state keeps its last successful value.
//
// ModelState is shared across concurrent requests without coordination
// beyond a mutex on individual reads/writes. Interleaved updates are
// last-write-wins; the state is advisory (routing preference and
// observability), not a correctness-critical lock.
package routing
