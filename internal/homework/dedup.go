package homework

// Deduplicator remembers error messages already handed to the notifier.
// Entries are never removed during the process lifetime.
type Deduplicator struct {
	seen map[string]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: map[string]struct{}{}}
}

// ShouldNotify reports whether message has not been recorded yet.
func (d *Deduplicator) ShouldNotify(message string) bool {
	_, ok := d.seen[message]
	return !ok
}

// Record marks message as handled. Idempotent.
func (d *Deduplicator) Record(message string) {
	if d.seen == nil {
		d.seen = map[string]struct{}{}
	}
	d.seen[message] = struct{}{}
}

func (d *Deduplicator) Len() int { return len(d.seen) }
