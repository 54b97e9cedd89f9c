package homework

import (
	"errors"
	"fmt"
)

// Kind classifies a poll-cycle failure.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindProtocol
	KindMalformedResponse
	KindMissingField
	KindUnknownStatus
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "TransportError"
	case KindProtocol:
		return "ProtocolError"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindMissingField:
		return "MissingField"
	case KindUnknownStatus:
		return "UnknownStatus"
	case KindDelivery:
		return "DeliveryError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsProtocol reports whether k belongs to the protocol family: the API
// answered, but not with something the decoder accepts.
func (k Kind) IsProtocol() bool {
	switch k {
	case KindProtocol, KindMalformedResponse, KindMissingField, KindUnknownStatus:
		return true
	}
	return false
}

// Error is a classified failure. Text must be static for a given cause so
// that Message() is stable across cycles; variable detail goes into Err.
type Error struct {
	Kind Kind
	Text string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message() + ": " + e.Err.Error()
	}
	return e.Message()
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the normalized form used as the dedup key and sent to the recipient.
func (e *Error) Message() string {
	return e.Kind.String() + ": " + e.Text
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return 0
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Text: fmt.Sprintf(format, args...)}
}

// Transport wraps a network-level failure.
func Transport(text string, err error) *Error {
	return &Error{Kind: KindTransport, Text: text, Err: err}
}

// Protocol reports an unusable but successfully transported response.
func Protocol(text string, err error) *Error {
	return &Error{Kind: KindProtocol, Text: text, Err: err}
}

// Delivery wraps a chat delivery failure.
func Delivery(err error) *Error {
	return &Error{Kind: KindDelivery, Text: "message delivery failed", Err: err}
}
