// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
)

// A Clock drives a clock signal from an akita event engine.
//
// Each clock edge is an engine event. Handling an edge schedules the new
// clock level on the clock driver and settles the kernel. The first edge is a
// rising edge.
type Clock struct {
	// OnEdge, if not nil, is called after the kernel has settled on every
	// clock edge. A non-nil error stops the clock.
	OnEdge func(level Logic) error

	k      *Kernel
	drv    *Driver
	engine sim.Engine
	half   sim.VTimeInSec
	next   sim.VTimeInSec
	left   int
	level  Logic
	edges  uint64
	err    error
}

type edgeEvent struct {
	*sim.EventBase
	level Logic
}

// NewClock creates a clock driving signal id at the given frequency. The
// clock owns the signal's driver.
func NewClock(k *Kernel, id SignalID, engine sim.Engine, freq sim.Freq) (*Clock, error) {
	if freq <= 0 {
		return nil, errors.Errorf("invalid clock frequency %v", freq)
	}
	if k.s.Width(id) != 1 {
		return nil, errors.Errorf("clock signal %q must be 1 bit wide", k.s.Name(id))
	}
	drv, err := k.t.Direct(id)
	if err != nil {
		return nil, errors.Wrap(err, "clock")
	}
	half := freq.Period() / 2
	return &Clock{
		k:      k,
		drv:    drv,
		engine: engine,
		half:   half,
		next:   engine.CurrentTime() + half,
		level:  k.s.At(id, 0),
	}, nil
}

// Level returns the current clock level.
func (c *Clock) Level() Logic { return c.level }

// Edges returns the number of clock edges handled so far.
func (c *Clock) Edges() uint64 { return c.edges }

// Now returns the current engine time.
func (c *Clock) Now() sim.VTimeInSec { return c.engine.CurrentTime() }

// Step runs the engine for a single clock edge.
func (c *Clock) Step() error {
	return c.run(1)
}

// Run runs the engine for the given number of clock cycles. If the clock is
// low or uninitialized, a cycle starts with a rising edge.
func (c *Clock) Run(cycles int) error {
	return c.run(2 * cycles)
}

func (c *Clock) run(edges int) error {
	if edges <= 0 {
		return nil
	}
	c.left = edges
	c.err = nil
	c.schedule()
	if err := c.engine.Run(); err != nil {
		return err
	}
	return c.err
}

func (c *Clock) schedule() {
	l := Hi
	if c.level == Hi {
		l = Lo
	}
	c.engine.Schedule(edgeEvent{sim.NewEventBase(c.next, c), l})
	c.next += c.half
}

// Handle implements sim.Handler. An error stops the clock and is returned by
// the pending call to Step or Run, not to the engine.
func (c *Clock) Handle(e sim.Event) error {
	if err := c.handle(e); err != nil {
		c.err = err
	}
	return nil
}

func (c *Clock) handle(e sim.Event) error {
	ev, ok := e.(edgeEvent)
	if !ok {
		return errors.Errorf("clock: unexpected event %T", e)
	}
	c.level = ev.level
	if err := c.drv.Schedule(Vector{ev.level}); err != nil {
		return err
	}
	if err := c.k.Settle(); err != nil {
		return errors.Wrapf(err, "clock edge at %v", ev.Time())
	}
	c.edges++
	if c.OnEdge != nil {
		if err := c.OnEdge(ev.level); err != nil {
			return err
		}
	}
	c.left--
	if c.left > 0 {
		c.schedule()
	}
	return nil
}
