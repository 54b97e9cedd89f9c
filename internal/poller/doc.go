// Package poller runs the fetch/decode/compare/notify cycle.
//
// One Poller is one logical worker: cycles never overlap and all state
// (tracked status, dedup set, cursor) is owned by the goroutine calling Run.
// Between cycles it sleeps a fixed interval; only the shutdown context ends
// the sleep early.
//
// Delivery policy:
//   - a status change is committed only after it was delivered; a failed
//     delivery is re-detected and retried on the next cycle
//   - an error message is recorded as handled once delivery was attempted,
//     whatever the outcome, so each distinct message is sent at most once
package poller
