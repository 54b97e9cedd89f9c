// Package notifier delivers text messages to the single configured recipient.
//
// # Transport
//
// Delivery is delegated to a transport.Sender (the Telegram adapter in
// production). The service adds the recipient target, a token-bucket rate
// limit and a per-send timeout. It never retries: a failed send is returned
// to the caller as a DeliveryError and the caller decides what happens next.
//
// # History
//
// For debugging, the service keeps a small in-memory history of delivery
// attempts. Nothing is persisted.
package notifier
