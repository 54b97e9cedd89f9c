// Package homework holds the review-status domain: the closed status/verdict
// set, the response decoder, the tracked status and the error-message dedup set.
//
// Nothing in this package performs I/O. The poller drives these types once per
// cycle from a single goroutine, so none of them are safe for concurrent use.
package homework
