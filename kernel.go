// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMaxDelta is the default limit on the number of delta cycles run by a
// single call to Kernel.Settle.
const DefaultMaxDelta = 1000

// Kernel is a minimal event-driven scheduler.
//
// All processes share a single evaluation queue and run in registration
// order. Direct driver updates are visible immediately, including to other
// processes evaluated later in the same delta cycle. Scheduled updates become
// visible at the next delta barrier.
type Kernel struct {
	// MaxDelta is the maximum number of delta cycles per call to Settle.
	MaxDelta int

	s      *Store
	t      *DriverTable
	procs  []*Process
	sens   map[SignalID][]int
	cont   []bool
	rep    Reporter
	log    logrus.FieldLogger
	trace  func(proc string, pos Pos)
	deltas uint64
}

// NewKernel returns a new kernel with an empty store. Diagnostics are logged
// to log. If log is nil, the logrus standard logger is used.
func NewKernel(log logrus.FieldLogger) *Kernel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := NewStore()
	return &Kernel{
		MaxDelta: DefaultMaxDelta,
		s:        s,
		t:        NewDriverTable(s),
		sens:     make(map[SignalID][]int),
		rep:      &LogReporter{Log: log},
		log:      log,
	}
}

// Store returns the kernel's signal store.
func (k *Kernel) Store() *Store { return k.s }

// Drivers returns the kernel's driver table.
func (k *Kernel) Drivers() *DriverTable { return k.t }

// Log returns the kernel's logger.
func (k *Kernel) Log() logrus.FieldLogger { return k.log }

// SetReporter replaces the diagnostic reporter. It must be called before
// registering processes.
func (k *Kernel) SetReporter(r Reporter) { k.rep = r }

// SetTracer sets a function called for every decode step of every process.
func (k *Kernel) SetTracer(fn func(proc string, pos Pos)) {
	k.trace = fn
	for _, p := range k.procs {
		p.SetTracer(fn)
	}
}

// Register builds a process from spec and adds it to the kernel.
func (k *Kernel) Register(spec ProcessSpec) (*Process, error) {
	p, err := NewProcess(k.s, spec, k.rep)
	if err != nil {
		return nil, errors.Wrap(err, "register process")
	}
	p.SetTracer(k.trace)
	i := len(k.procs)
	k.procs = append(k.procs, p)
	k.cont = append(k.cont, false)
	for _, id := range p.sens {
		k.sens[id] = append(k.sens[id], i)
	}
	k.log.WithField("process", p.name).Debug("process registered")
	return p, nil
}

// Processes returns the registered processes.
func (k *Kernel) Processes() []*Process { return k.procs }

// Deltas returns the total number of delta cycles run so far.
func (k *Kernel) Deltas() uint64 { return k.deltas }

// Start runs every process once then settles the simulation.
func (k *Kernel) Start() error {
	for i := range k.cont {
		k.cont[i] = true
	}
	return k.Settle()
}

// Settle runs delta cycles until no process is runnable.
//
// Each delta cycle commits pending driver values, then evaluates every
// process sensitive to a signal that changed since the previous cycle and
// every process that asked to continue.
//
// Step errors are reported and do not stop the simulation. Settle returns an
// error only if the simulation does not settle within MaxDelta cycles.
func (k *Kernel) Settle() error {
	run := make([]bool, len(k.procs))
	for n := 0; ; n++ {
		k.t.Commit()
		ready := false
		for i := range run {
			run[i] = k.cont[i]
			k.cont[i] = false
			ready = ready || run[i]
		}
		for _, id := range k.s.Drain() {
			for _, i := range k.sens[id] {
				run[i] = true
				ready = true
			}
		}
		if !ready {
			return nil
		}
		if n >= k.MaxDelta {
			k.log.WithField("deltas", n).Error("simulation does not settle")
			return errors.Wrapf(ErrDeltaOverflow, "after %d cycles", n)
		}
		k.deltas++
		for i, p := range k.procs {
			if !run[i] {
				continue
			}
			r, err := p.Eval()
			if err != nil {
				d := Diagnostic{Process: p.name, Err: err}
				if se, ok := err.(*StepError); ok {
					d.Pos = se.Pos
				}
				k.rep.Report(d)
			}
			if r == Continue {
				k.cont[i] = true
			}
		}
	}
}
