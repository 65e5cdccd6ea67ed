package athlete

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID    = errors.New("duplicate athlete id")
	ErrDuplicateEmail = errors.New("duplicate athlete email")
	ErrNotFound       = errors.New("athlete not found")
	// ErrAmbiguousKey means one record's id equals another record's email,
	// so Lookup could not tell them apart.
	ErrAmbiguousKey = errors.New("athlete id collides with another athlete's email")
)

// Roster is an immutable working set of records indexed by id and email.
// Build a new Roster to change its contents; never mutate one in place.
type Roster struct {
	records []Record
	byID    map[string]int
	byEmail map[string]int
}

// NewRoster indexes records, rejecting duplicate ids or emails and any id
// that equals a different record's email.
// PRE: each record has a non-empty ID and Email
// POST: Returns a roster whose lookups by id and email agree
// INVARIANT: input slice is not retained
func NewRoster(records []Record) (*Roster, error) {
	r := &Roster{
		records: make([]Record, 0, len(records)),
		byID:    make(map[string]int, len(records)),
		byEmail: make(map[string]int, len(records)),
	}
	for _, rec := range records {
		id := NormalizeKey(rec.ID)
		email := NormalizeKey(rec.Email)
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		if _, dup := r.byEmail[email]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, rec.Email)
		}
		if _, clash := r.byEmail[id]; clash {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousKey, rec.ID)
		}
		if _, clash := r.byID[email]; clash {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousKey, rec.Email)
		}
		r.byID[id] = len(r.records)
		r.byEmail[email] = len(r.records)
		r.records = append(r.records, rec.Clone())
	}
	return r, nil
}

// EmptyRoster returns a roster with no records.
func EmptyRoster() *Roster {
	r, _ := NewRoster(nil)
	return r
}

// Len returns the number of records.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// ByID returns the record with the given id.
func (r *Roster) ByID(id string) (Record, bool) {
	if r == nil {
		return Record{}, false
	}
	i, ok := r.byID[NormalizeKey(id)]
	if !ok {
		return Record{}, false
	}
	return r.records[i].Clone(), true
}

// ByEmail returns the record with the given email (case-insensitive).
func (r *Roster) ByEmail(email string) (Record, bool) {
	if r == nil {
		return Record{}, false
	}
	i, ok := r.byEmail[NormalizeKey(email)]
	if !ok {
		return Record{}, false
	}
	return r.records[i].Clone(), true
}

// Lookup resolves a key that may be either an id or an email.
func (r *Roster) Lookup(key string) (Record, error) {
	if rec, ok := r.ByID(key); ok {
		return rec, nil
	}
	if rec, ok := r.ByEmail(key); ok {
		return rec, nil
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// Records returns a copy of every record in insertion order.
func (r *Roster) Records() []Record {
	if r == nil {
		return []Record{}
	}
	out := make([]Record, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}
