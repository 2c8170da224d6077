package domain

// VersionNew marks an aggregate that has never been persisted. The first
// save inserts it with version 0; every later save increments the stored
// version by exactly one.
const VersionNew int64 = -1

// Aggregate is the unit of transactional consistency. Implementations are
// value types: every mutation returns a new instance, so the copy that was
// validated and the copy that is persisted are always the same value.
type Aggregate interface {
	AggregateID() string
	AggregateType() string
	AggregateVersion() int64
	PendingEvents() []Event
}

// root carries identity, version and the buffer of not-yet-published events.
// It is embedded by every aggregate in this package.
type root struct {
	id      string
	typ     string
	version int64
	pending []Event
}

func newRoot(id, typ string) root {
	return root{id: id, typ: typ, version: VersionNew}
}

func rehydratedRoot(id, typ string, version int64) root {
	return root{id: id, typ: typ, version: version}
}

// AggregateID returns the aggregate identity.
func (r root) AggregateID() string { return r.id }

// AggregateType returns the aggregate type name.
func (r root) AggregateType() string { return r.typ }

// AggregateVersion returns the version loaded from storage, or VersionNew.
func (r root) AggregateVersion() int64 { return r.version }

// PendingEvents returns a copy of the events recorded since rehydration.
func (r root) PendingEvents() []Event {
	out := make([]Event, len(r.pending))
	copy(out, r.pending)
	return out
}

// record returns a copy of the root with one more pending event. The slice
// is never shared between instances.
func (r root) record(e Event) root {
	e.AggregateID = r.id
	e.AggregateType = r.typ
	pending := make([]Event, len(r.pending), len(r.pending)+1)
	copy(pending, r.pending)
	next := r
	next.pending = append(pending, e)
	return next
}
