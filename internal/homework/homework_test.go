package homework

import (
	"errors"
	"strings"
	"testing"
)

func TestVerdictClosedSet(t *testing.T) {
	t.Parallel()
	for _, s := range []Status{StatusApproved, StatusReviewing, StatusRejected} {
		if _, ok := Verdict(s); !ok {
			t.Fatalf("Verdict(%q) missing", s)
		}
	}
	for _, s := range []Status{StatusUnset, "lost", "APPROVED"} {
		if _, ok := Verdict(s); ok {
			t.Fatalf("Verdict(%q) should not be mapped", s)
		}
	}
}

func TestStatusMessage(t *testing.T) {
	t.Parallel()
	msg, err := StatusMessage(Assignment{Name: "A", Status: StatusReviewing})
	if err != nil {
		t.Fatalf("StatusMessage error: %v", err)
	}
	for _, want := range []string{`status of "A"`, "reviewing", "taken for review"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q does not contain %q", msg, want)
		}
	}

	if _, err := StatusMessage(Assignment{Name: "A", Status: "lost"}); KindOf(err) != KindUnknownStatus {
		t.Fatalf("expected UnknownStatus, got %v", err)
	}
}

func TestTrackerCommitsOnlyExplicitly(t *testing.T) {
	t.Parallel()
	var tr Tracker
	a := Assignment{Name: "A", Status: StatusReviewing}

	if tr.Current() != StatusUnset {
		t.Fatalf("initial = %q, want unset", tr.Current())
	}
	if !tr.HasChanged(a) {
		t.Fatal("first observation must count as a change")
	}
	next := tr.Advance(a)
	if tr.Current() != StatusUnset {
		t.Fatal("Advance must not mutate the tracker")
	}
	tr.Commit(next)
	if tr.HasChanged(a) {
		t.Fatal("same status reported as changed after commit")
	}
	if !tr.HasChanged(Assignment{Name: "A", Status: StatusApproved}) {
		t.Fatal("new status not reported as changed")
	}
}

func TestDeduplicator(t *testing.T) {
	t.Parallel()
	d := NewDeduplicator()
	msg := Transport("status API request failed", errors.New("dial tcp: timeout")).Message()

	if !d.ShouldNotify(msg) {
		t.Fatal("fresh message should notify")
	}
	d.Record(msg)
	d.Record(msg)
	if d.ShouldNotify(msg) {
		t.Fatal("recorded message should be suppressed")
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
	if !d.ShouldNotify(msg + " ") {
		t.Fatal("equality must be exact")
	}

	var zero Deduplicator
	if !zero.ShouldNotify(msg) {
		t.Fatal("zero value should accept")
	}
	zero.Record(msg)
	if zero.ShouldNotify(msg) {
		t.Fatal("zero value should record")
	}
}

func TestCursorNeverMovesBackward(t *testing.T) {
	t.Parallel()
	c := Cursor(100)
	if got := c.Advance(50); got != 100 {
		t.Fatalf("Advance(50) = %d, want 100", got)
	}
	if got := c.Advance(150); got != 150 {
		t.Fatalf("Advance(150) = %d, want 150", got)
	}
}

func TestErrorMessageExcludesCause(t *testing.T) {
	t.Parallel()
	a := Transport("status API request failed", errors.New("dial tcp 10.0.0.1: i/o timeout"))
	b := Transport("status API request failed", errors.New("dial tcp 10.0.0.2: connection refused"))
	if a.Message() != b.Message() {
		t.Fatalf("normalized messages differ: %q vs %q", a.Message(), b.Message())
	}
	if !strings.Contains(a.Error(), "i/o timeout") {
		t.Fatalf("Error() should keep the cause: %q", a.Error())
	}
	if !errors.Is(a, a.Err) {
		t.Fatal("Unwrap should expose the cause")
	}
	if KindOf(a) != KindTransport || KindOf(a).IsProtocol() {
		t.Fatalf("unexpected kind %v", KindOf(a))
	}
}
