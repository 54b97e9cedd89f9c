package homework

import "fmt"

// Status is a review status reported by the status API.
type Status string

const (
	// StatusUnset is the tracked value before anything was observed.
	// It never equals a real status.
	StatusUnset     Status = ""
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

var verdicts = map[Status]string{
	StatusApproved:  "The work has been checked: the reviewer liked everything. Hooray!",
	StatusReviewing: "The work has been taken for review by a reviewer.",
	StatusRejected:  "The work has been checked: the reviewer has remarks.",
}

// Verdict returns the human-readable phrase for s. ok is false for any
// status outside the closed set, StatusUnset included.
func Verdict(s Status) (phrase string, ok bool) {
	phrase, ok = verdicts[s]
	return phrase, ok
}

// Known reports whether s belongs to the closed verdict set.
func (s Status) Known() bool {
	_, ok := verdicts[s]
	return ok
}

// Assignment is the homework currently being tracked. Identity is the name.
type Assignment struct {
	Name   string
	Status Status
}

// Cursor is the unix timestamp sent as from_date.
type Cursor int64

// Advance returns the later of c and next. A cursor never moves backward.
func (c Cursor) Advance(next Cursor) Cursor {
	if next > c {
		return next
	}
	return c
}

// Snapshot is the decoded result of one status response.
type Snapshot struct {
	// Present is false when the response carried no homework at all.
	Present    bool
	Assignment Assignment

	HasCursor bool
	Cursor    Cursor
}

// StatusMessage builds the text sent to the recipient for a status change.
func StatusMessage(a Assignment) (string, error) {
	verdict, ok := Verdict(a.Status)
	if !ok {
		return "", &Error{Kind: KindUnknownStatus, Text: fmt.Sprintf("status %q has no verdict", string(a.Status))}
	}
	return fmt.Sprintf("The review status of %q changed to %s. %s", a.Name, a.Status, verdict), nil
}
