// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// SignalID identifies a signal in a Store.
type SignalID int

// NoSignal is an invalid SignalID.
const NoSignal SignalID = -1

type signal struct {
	name     string
	literals []string // enumeration literals, nil for logic vectors
	val      Vector
	stamp    uint64 // change counter value at the last change
	driven   bool
}

// Store holds the current value of every signal in a simulation.
//
// Signal values can only be changed through a Driver (see DriverTable).
type Store struct {
	sigs  []*signal
	names map[string]SignalID
	clock uint64 // change counter
	dirty []SignalID
	mark  []bool
}

// NewStore returns a new empty Store.
func NewStore() *Store {
	return &Store{names: make(map[string]SignalID)}
}

func (s *Store) add(name string, sig *signal) (SignalID, error) {
	if name == "" {
		return NoSignal, errors.New("empty signal name")
	}
	if _, ok := s.names[name]; ok {
		return NoSignal, errors.Errorf("signal %q already declared", name)
	}
	id := SignalID(len(s.sigs))
	s.sigs = append(s.sigs, sig)
	s.mark = append(s.mark, false)
	s.names[name] = id
	return id, nil
}

// Declare declares a new logic vector signal of the given width with all its
// elements set to init.
func (s *Store) Declare(name string, width int, init Logic) (SignalID, error) {
	if width < 1 || width > 64 {
		return NoSignal, errors.Errorf("signal %q: invalid width %d", name, width)
	}
	return s.add(name, &signal{name: name, val: Fill(width, init)})
}

// DeclareEnum declares an enumerated signal with the given literals. The
// initial value is the first literal.
func (s *Store) DeclareEnum(name string, literals ...string) (SignalID, error) {
	if len(literals) == 0 || len(literals) > 256 {
		return NoSignal, errors.Errorf("signal %q: invalid literal count %d", name, len(literals))
	}
	lits := make([]string, len(literals))
	copy(lits, literals)
	return s.add(name, &signal{name: name, literals: lits, val: Vector{0}})
}

// Lookup returns the id of the named signal.
func (s *Store) Lookup(name string) (SignalID, error) {
	id, ok := s.names[name]
	if !ok {
		return NoSignal, errors.Wrap(ErrNoSignal, name)
	}
	return id, nil
}

func (s *Store) get(id SignalID) *signal {
	if id < 0 || int(id) >= len(s.sigs) {
		panic("invalid signal id " + strconv.Itoa(int(id)))
	}
	return s.sigs[id]
}

// Len returns the number of signals in the store.
func (s *Store) Len() int { return len(s.sigs) }

// Name returns the name of signal id.
func (s *Store) Name(id SignalID) string { return s.get(id).name }

// Width returns the number of elements in the value of signal id.
func (s *Store) Width(id SignalID) int { return len(s.get(id).val) }

// Literals returns the enumeration literals of signal id, or nil if id is not
// an enumerated signal.
func (s *Store) Literals(id SignalID) []string { return s.get(id).literals }

// Literal returns the ordinal of the named literal of enumerated signal id.
func (s *Store) Literal(id SignalID, lit string) (Logic, error) {
	sig := s.get(id)
	for i, l := range sig.literals {
		if l == lit {
			return Logic(i), nil
		}
	}
	return 0, errors.Errorf("signal %q has no literal %q", sig.name, lit)
}

// Read returns a copy of the current value of signal id.
func (s *Store) Read(id SignalID) Vector {
	return s.get(id).val.Clone()
}

// At returns element i of signal id.
func (s *Store) At(id SignalID, i int) Logic {
	return s.get(id).val[i]
}

// Stamp returns the value of the change counter the last time signal id
// changed. It is 0 if the signal never changed.
func (s *Store) Stamp(id SignalID) uint64 {
	return s.get(id).stamp
}

// write sets the value of signal id and returns true if the value changed.
// The overlapping elements of v are copied. Callers check widths.
func (s *Store) write(id SignalID, v Vector) bool {
	sig := s.get(id)
	if Vector(sig.val[:min(len(v), len(sig.val))]).Equal(v[:min(len(v), len(sig.val))]) {
		return false
	}
	copy(sig.val, v)
	s.clock++
	sig.stamp = s.clock
	if !s.mark[id] {
		s.mark[id] = true
		s.dirty = append(s.dirty, id)
	}
	return true
}

// Drain returns the signals that changed since the last call to Drain, in the
// order of their first change.
func (s *Store) Drain() []SignalID {
	d := s.dirty
	for _, id := range d {
		s.mark[id] = false
	}
	s.dirty = nil
	return d
}

// Observer tracks signal changes on behalf of a single reader.
type Observer struct {
	s    *Store
	seen map[SignalID]uint64
}

// NewObserver returns a new Observer for store s. All signals are considered
// observed at the time of the call.
func NewObserver(s *Store) *Observer {
	o := &Observer{s: s, seen: make(map[SignalID]uint64)}
	for id := range s.sigs {
		o.seen[SignalID(id)] = s.sigs[id].stamp
	}
	return o
}

// Event returns true if signal id changed since the last call to Sync for
// that signal.
func (o *Observer) Event(id SignalID) bool {
	return o.s.Stamp(id) > o.seen[id]
}

// Sync marks the current value of the given signals as observed.
func (o *Observer) Sync(ids ...SignalID) {
	for _, id := range ids {
		o.seen[id] = o.s.Stamp(id)
	}
}
