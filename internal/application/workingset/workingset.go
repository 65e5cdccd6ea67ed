// Package workingset holds the roster the portal currently serves.
package workingset

import (
	"sync/atomic"

	"athleteportal/internal/domain/athlete"
)

// WorkingSet is the current athlete roster. Uploads replace it wholesale;
// readers always see one complete snapshot.
type WorkingSet struct {
	current atomic.Pointer[athlete.Roster]
}

// New returns a working set holding roster, or an empty roster when nil.
func New(roster *athlete.Roster) *WorkingSet {
	ws := &WorkingSet{}
	ws.Replace(roster)
	return ws
}

// Current returns the active snapshot. It is never nil.
func (w *WorkingSet) Current() *athlete.Roster {
	if r := w.current.Load(); r != nil {
		return r
	}
	return athlete.EmptyRoster()
}

// Replace swaps in roster. A nil roster clears the working set.
// POST: subsequent Current calls return roster
func (w *WorkingSet) Replace(roster *athlete.Roster) {
	if roster == nil {
		roster = athlete.EmptyRoster()
	}
	w.current.Store(roster)
}
