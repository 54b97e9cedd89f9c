package homework

// Tracker holds the last status the recipient was told about.
type Tracker struct {
	current Status
}

// Current returns the tracked status (StatusUnset before the first commit).
func (t *Tracker) Current() Status { return t.current }

// HasChanged reports whether candidate carries a status different from the
// tracked one.
func (t *Tracker) HasChanged(candidate Assignment) bool {
	return candidate.Status != t.current
}

// Advance returns the value the tracker would hold after accepting candidate.
// It does not mutate the tracker; call Commit once the change was delivered.
func (t *Tracker) Advance(candidate Assignment) Status {
	return candidate.Status
}

// Commit applies a value returned by Advance.
func (t *Tracker) Commit(s Status) { t.current = s }
