// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"strings"

	"github.com/pkg/errors"
)

// A Scope maps signal names to signal ids and drivers while a process is
// being built.
//
// Lookup failures do not stop the build: they are recorded and returned by
// Err, so that all missing names are reported at once.
type Scope struct {
	k    *Kernel
	errs []error
}

// NewScope returns a new scope over the signals and drivers of k.
func NewScope(k *Kernel) *Scope {
	return &Scope{k: k}
}

// Kernel returns the kernel the scope resolves names in.
func (s *Scope) Kernel() *Kernel { return s.k }

func (s *Scope) fail(err error) {
	s.errs = append(s.errs, err)
}

// Signal returns the id of the named signal. If no such signal exists, the
// error is recorded and NoSignal is returned.
func (s *Scope) Signal(name string) SignalID {
	id, err := s.k.s.Lookup(name)
	if err != nil {
		s.fail(err)
	}
	return id
}

// Driver returns a new direct driver for the named signal.
func (s *Scope) Driver(name string) *Driver {
	id := s.Signal(name)
	if id == NoSignal {
		return nil
	}
	d, err := s.k.t.Direct(id)
	if err != nil {
		s.fail(err)
	}
	return d
}

// Port returns a new port-routed driver for the named signal. The port has
// the same name as the signal.
func (s *Scope) Port(name string) *Driver {
	id := s.Signal(name)
	if id == NoSignal {
		return nil
	}
	d, err := s.k.t.Port(name, id)
	if err != nil {
		s.fail(err)
	}
	return d
}

// Literal returns the ordinal of a literal of the named enumerated signal.
func (s *Scope) Literal(name, lit string) Logic {
	id := s.Signal(name)
	if id == NoSignal {
		return 0
	}
	l, err := s.k.s.Literal(id, lit)
	if err != nil {
		s.fail(err)
	}
	return l
}

// Errorf records a build error.
func (s *Scope) Errorf(format string, args ...interface{}) {
	s.fail(errors.Errorf(format, args...))
}

// Err returns an error listing all recorded failures, or nil. The cause of
// the returned error is the cause of the first failure.
func (s *Scope) Err() error {
	switch len(s.errs) {
	case 0:
		return nil
	case 1:
		return s.errs[0]
	}
	msgs := make([]string, 0, len(s.errs)-1)
	for _, err := range s.errs[1:] {
		msgs = append(msgs, err.Error())
	}
	return errors.WithMessage(s.errs[0], strings.Join(msgs, "; "))
}
