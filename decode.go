// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// Resume tells the scheduler when to run a process again.
type Resume int

// Resume values.
const (
	Wait     Resume = iota // resume on the next event in the sensitivity set
	Continue               // run again in the next delta cycle
)

func (r Resume) String() string {
	if r == Continue {
		return "continue"
	}
	return "wait"
}

// A Node is a node in a decode tree. It is one of *Leaf, *Branch, *Switch or
// *Match.
type Node interface {
	pos() Pos
}

// A Leaf ends a dispatch. Its actions are applied in order.
type Leaf struct {
	Pos     Pos
	Actions []Action
	Resume  Resume
}

// A Branch selects Then if Cond holds, Else otherwise.
type Branch struct {
	Pos  Pos
	Cond Cond
	Then Node
	Else Node
}

// A Switch selects Cases[i] where i is the ordinal held by an enumerated
// Signal. Ordinals with no case select Default.
type Switch struct {
	Pos     Pos
	Signal  SignalID
	Cases   []Node
	Default Node
}

// A MatchCase pairs a constant pattern with the node it selects.
type MatchCase struct {
	Pattern Vector
	Node    Node
}

// A Match compares Signal against each case pattern in order and selects the
// first exact match, or Default.
type Match struct {
	Pos     Pos
	Signal  SignalID
	Cases   []MatchCase
	Default Node
}

func (n *Leaf) pos() Pos { return n.Pos }
func (n *Branch) pos() Pos { return n.Pos }
func (n *Switch) pos() Pos { return n.Pos }
func (n *Match) pos() Pos { return n.Pos }

// A Cond is a branch condition. It is one of Level or RisingEdge.
type Cond interface {
	signal() SignalID
}

// Level holds when element 0 of Signal equals Value.
type Level struct {
	Signal SignalID
	Value  Logic
}

// RisingEdge holds when Signal changed since the process last observed it
// and is now '1'.
type RisingEdge struct {
	Signal SignalID
}

func (c Level) signal() SignalID { return c.Signal }
func (c RisingEdge) signal() SignalID { return c.Signal }

// An Action is a driver update issued by a leaf. It is one of *Assign, *Copy
// or *Increment.
type Action interface {
	pos() Pos
	driver() *Driver
}

// Assign applies a constant value.
type Assign struct {
	Pos   Pos
	Dst   *Driver
	Value Vector
}

// Copy applies the current value of signal Src.
type Copy struct {
	Pos Pos
	Dst *Driver
	Src SignalID
}

// Increment applies the current value of signal Src plus Addend.
type Increment struct {
	Pos    Pos
	Dst    *Driver
	Src    SignalID
	Addend Logic
}

func (a *Assign) pos() Pos { return a.Pos }
func (a *Copy) pos() Pos { return a.Pos }
func (a *Increment) pos() Pos { return a.Pos }
func (a *Assign) driver() *Driver { return a.Dst }
func (a *Copy) driver() *Driver { return a.Dst }
func (a *Increment) driver() *Driver { return a.Dst }

// Validate checks that the tree rooted at n is complete: no nil child, every
// Switch covers its signal's domain or has a default, every Match has a
// default, and all referenced signals and drivers exist in s.
func Validate(s *Store, n Node) error {
	return validate(s, n, "root")
}

func validSignal(s *Store, id SignalID) bool {
	return id >= 0 && int(id) < s.Len()
}

func validate(s *Store, n Node, path string) error {
	switch n := n.(type) {
	case nil:
		return errors.Wrap(ErrIncomplete, path+": nil node")
	case *Leaf:
		if n == nil {
			return errors.Wrap(ErrIncomplete, path+": nil leaf")
		}
		for i, a := range n.Actions {
			if err := validateAction(s, a); err != nil {
				return errors.Wrapf(err, "%s: action %d (%s)", path, i, a.pos())
			}
		}
	case *Branch:
		if n == nil {
			return errors.Wrap(ErrIncomplete, path+": nil branch")
		}
		if n.Cond == nil || !validSignal(s, n.Cond.signal()) {
			return errors.Wrapf(ErrNoSignal, "%s: branch condition (%s)", path, n.Pos)
		}
		if err := validate(s, n.Then, path+"/then"); err != nil {
			return err
		}
		return validate(s, n.Else, path+"/else")
	case *Switch:
		if n == nil {
			return errors.Wrap(ErrIncomplete, path+": nil switch")
		}
		if !validSignal(s, n.Signal) {
			return errors.Wrapf(ErrNoSignal, "%s: switch (%s)", path, n.Pos)
		}
		lits := s.Literals(n.Signal)
		if lits == nil {
			return errors.Errorf("%s: switch on non-enumerated signal %q (%s)", path, s.Name(n.Signal), n.Pos)
		}
		if len(n.Cases) > len(lits) {
			return errors.Errorf("%s: %d cases for %d literals of %q (%s)", path, len(n.Cases), len(lits), s.Name(n.Signal), n.Pos)
		}
		for i, c := range n.Cases {
			if err := validate(s, c, path+"/"+lits[i]); err != nil {
				return err
			}
		}
		if len(n.Cases) < len(lits) || n.Default != nil {
			return validate(s, n.Default, path+"/others")
		}
	case *Match:
		if n == nil {
			return errors.Wrap(ErrIncomplete, path+": nil match")
		}
		if !validSignal(s, n.Signal) {
			return errors.Wrapf(ErrNoSignal, "%s: match (%s)", path, n.Pos)
		}
		for i, c := range n.Cases {
			if c.Pattern == nil {
				return errors.Wrapf(ErrIncomplete, "%s: case %d has no pattern", path, i)
			}
			if err := validate(s, c.Node, path+"/"+c.Pattern.String()); err != nil {
				return err
			}
		}
		return validate(s, n.Default, path+"/others")
	default:
		return errors.Errorf("%s: unsupported node type %T", path, n)
	}
	return nil
}

func validateAction(s *Store, a Action) error {
	if a == nil {
		return errors.New("nil action")
	}
	d := a.driver()
	if d == nil {
		return ErrNoDriver
	}
	switch a := a.(type) {
	case *Copy:
		if !validSignal(s, a.Src) {
			return errors.Wrap(ErrNoSignal, "source id "+strconv.Itoa(int(a.Src)))
		}
	case *Increment:
		if !validSignal(s, a.Src) {
			return errors.Wrap(ErrNoSignal, "source id "+strconv.Itoa(int(a.Src)))
		}
	}
	return nil
}
