// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"github.com/pkg/errors"
)

// A ProcessSpec wraps a process blueprint: a name, the signals that wake it
// up and the decode tree it evaluates.
type ProcessSpec struct {
	// Human readable name, used in diagnostics.
	Name string
	// Signals whose change causes the process to be re-evaluated.
	Sensitivity []SignalID
	// Decode tree root.
	Root Node
}

// A Process evaluates a decode tree against a Store.
//
// A Process is not safe for concurrent use. Each call to Eval runs to
// completion.
type Process struct {
	name  string
	s     *Store
	root  Node
	sens  []SignalID
	obs   *Observer
	rep   Reporter
	trace func(proc string, pos Pos)
	evals uint64
}

// NewProcess checks spec against s and returns a new Process.
// Diagnostics raised during evaluation are sent to rep, which may be nil.
func NewProcess(s *Store, spec ProcessSpec, rep Reporter) (*Process, error) {
	if spec.Name == "" {
		return nil, errors.New("process has no name")
	}
	for _, id := range spec.Sensitivity {
		if !validSignal(s, id) {
			return nil, errors.Wrapf(ErrNoSignal, "%s: sensitivity list", spec.Name)
		}
	}
	if err := Validate(s, spec.Root); err != nil {
		return nil, errors.Wrap(err, spec.Name)
	}
	if rep == nil {
		rep = ReporterFunc(func(Diagnostic) {})
	}
	sens := make([]SignalID, len(spec.Sensitivity))
	copy(sens, spec.Sensitivity)
	return &Process{
		name: spec.Name,
		s:    s,
		root: spec.Root,
		sens: sens,
		obs:  NewObserver(s),
		rep:  rep,
	}, nil
}

// Name returns the process name.
func (p *Process) Name() string { return p.name }

// Sensitivity returns the process sensitivity list.
func (p *Process) Sensitivity() []SignalID { return p.sens }

// Evals returns the number of times the process has been evaluated.
func (p *Process) Evals() uint64 { return p.evals }

// SetTracer sets a function called with the position of every node and action
// visited during evaluation.
func (p *Process) SetTracer(fn func(proc string, pos Pos)) { p.trace = fn }

func (p *Process) line(pos Pos) {
	if p.trace != nil {
		p.trace(p.name, pos)
	}
}

// Eval walks the decode tree from its root down to a leaf and applies the
// leaf's actions in order. It returns the leaf's Resume value.
//
// Width mismatches in actions are reported and evaluation continues. A
// pattern whose width differs from the matched signal aborts the evaluation
// with a *StepError; updates applied before that point are kept.
//
// Edges are computed against the state of the sensitivity list at the end of
// the previous call to Eval.
func (p *Process) Eval() (Resume, error) {
	defer p.obs.Sync(p.sens...)
	p.evals++

	n := p.root
	for {
		p.line(n.pos())
		switch n0 := n.(type) {
		case *Leaf:
			for _, a := range n0.Actions {
				p.exec(a)
			}
			return n0.Resume, nil
		case *Branch:
			if p.holds(n0.Cond) {
				n = n0.Then
			} else {
				n = n0.Else
			}
		case *Switch:
			o := int(p.s.At(n0.Signal, 0))
			switch {
			case o < len(n0.Cases):
				n = n0.Cases[o]
			case n0.Default != nil:
				n = n0.Default
			default:
				return Wait, p.stepError(n0.Pos, errors.Errorf("%s: ordinal %d out of range", p.s.Name(n0.Signal), o))
			}
		case *Match:
			v := p.s.Read(n0.Signal)
			n = n0.Default
			for _, c := range n0.Cases {
				if len(c.Pattern) != len(v) {
					return Wait, p.stepError(n0.Pos, &WidthError{Signal: p.s.Name(n0.Signal), Want: len(v), Got: len(c.Pattern)})
				}
				if c.Pattern.Equal(v) {
					n = c.Node
					break
				}
			}
		default:
			return Wait, p.stepError(n.pos(), errors.Errorf("unsupported node type %T", n))
		}
	}
}

func (p *Process) stepError(pos Pos, err error) error {
	return &StepError{Process: p.name, Pos: pos, Err: err}
}

func (p *Process) holds(c Cond) bool {
	switch c := c.(type) {
	case Level:
		return p.s.At(c.Signal, 0) == c.Value
	case RisingEdge:
		return p.obs.Event(c.Signal) && p.s.At(c.Signal, 0) == Hi
	}
	return false
}

func (p *Process) exec(a Action) {
	p.line(a.pos())
	var err error
	switch a := a.(type) {
	case *Assign:
		err = a.Dst.Apply(a.Value)
	case *Copy:
		err = a.Dst.Apply(p.s.Read(a.Src))
	case *Increment:
		err = a.Dst.Apply(AddLogic(p.s.Read(a.Src), a.Addend))
	}
	if err != nil {
		p.rep.Report(Diagnostic{Process: p.name, Pos: a.pos(), Err: err})
	}
}
