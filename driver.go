// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"github.com/pkg/errors"
)

// A Port is the storage of an entity output port. Port-routed drivers write
// through it before the value reaches the connected signal.
type Port struct {
	Name string
	buf  Vector
}

// Value returns a copy of the last value written to the port.
func (p *Port) Value() Vector { return p.buf.Clone() }

// A Driver is the sole writer of a signal.
//
// Apply updates the signal immediately: later reads in the same evaluation
// pass observe the new value. Schedule buffers the value until the next call
// to DriverTable.Commit. A driver holds at most one pending value.
type Driver struct {
	s       *Store
	id      SignalID
	port    *Port
	pending Vector
	queued  bool
	t       *DriverTable
}

// Signal returns the id of the driven signal.
func (d *Driver) Signal() SignalID { return d.id }

// Port returns the port this driver routes through, or nil for a direct
// driver.
func (d *Driver) Port() *Port { return d.port }

// check returns a *WidthError if v does not match the signal's width.
func (d *Driver) check(v Vector) error {
	if w := d.s.Width(d.id); w != len(v) {
		return &WidthError{Signal: d.s.Name(d.id), Want: w, Got: len(v)}
	}
	return nil
}

// Apply writes v to the driven signal with no delta delay.
//
// If the width of v does not match the signal, the overlapping elements are
// written anyway and a *WidthError is returned.
func (d *Driver) Apply(v Vector) error {
	err := d.check(v)
	if d.port != nil {
		copy(d.port.buf, v)
		v = d.port.buf
	}
	d.s.write(d.id, v)
	return err
}

// Schedule sets v as the pending value of the driver, replacing any previous
// pending value. The value becomes visible when the driver table is
// committed.
func (d *Driver) Schedule(v Vector) error {
	err := d.check(v)
	if d.pending == nil {
		d.pending = make(Vector, d.s.Width(d.id))
	}
	copy(d.pending, v)
	if !d.queued {
		d.queued = true
		d.t.queue = append(d.t.queue, d)
	}
	return err
}

// Pending returns the pending value of the driver and true, or nil and false
// if there is none.
func (d *Driver) Pending() (Vector, bool) {
	if !d.queued {
		return nil, false
	}
	return d.pending.Clone(), true
}

// DriverTable owns the drivers of a Store.
type DriverTable struct {
	s       *Store
	drivers map[SignalID]*Driver
	ports   map[string]*Port
	queue   []*Driver
}

// NewDriverTable returns a new driver table for s.
func NewDriverTable(s *Store) *DriverTable {
	return &DriverTable{
		s:       s,
		drivers: make(map[SignalID]*Driver),
		ports:   make(map[string]*Port),
	}
}

func (t *DriverTable) add(id SignalID, p *Port) (*Driver, error) {
	if id < 0 || int(id) >= t.s.Len() {
		return nil, errors.Wrapf(ErrNoSignal, "signal id %d", id)
	}
	if _, ok := t.drivers[id]; ok {
		return nil, errors.Wrap(ErrMultipleDrivers, t.s.Name(id))
	}
	d := &Driver{s: t.s, id: id, port: p, t: t}
	t.drivers[id] = d
	return d, nil
}

// Direct creates a direct driver for signal id.
func (t *DriverTable) Direct(id SignalID) (*Driver, error) {
	return t.add(id, nil)
}

// Port creates a driver for signal id that routes its updates through a port
// with the given name.
func (t *DriverTable) Port(name string, id SignalID) (*Driver, error) {
	if _, ok := t.ports[name]; ok {
		return nil, errors.Errorf("port %q already exists", name)
	}
	if id < 0 || int(id) >= t.s.Len() {
		return nil, errors.Wrapf(ErrNoSignal, "port %q", name)
	}
	p := &Port{Name: name, buf: t.s.Read(id)}
	d, err := t.add(id, p)
	if err != nil {
		return nil, err
	}
	t.ports[name] = p
	return d, nil
}

// Ports returns the number of ports in the table.
func (t *DriverTable) Ports() int { return len(t.ports) }

// Driver returns the driver of signal id or nil.
func (t *DriverTable) Driver(id SignalID) *Driver {
	return t.drivers[id]
}

// Commit applies all pending values, in the order they were first
// scheduled, and returns the signals whose value changed.
func (t *DriverTable) Commit() []SignalID {
	var changed []SignalID
	q := t.queue
	t.queue = nil
	for _, d := range q {
		d.queued = false
		v := d.pending
		if d.port != nil {
			copy(d.port.buf, v)
			v = d.port.buf
		}
		if d.s.write(d.id, v) {
			changed = append(changed, d.id)
		}
	}
	return changed
}
