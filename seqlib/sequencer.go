// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqlib

import (
	"strconv"

	"github.com/db47h/seqsim"
	"github.com/pkg/errors"
)

// core holds the signals every sequencer build relies on.
type core struct {
	Clk   seqsim.SignalID `seq:"clk"`
	Reset seqsim.SignalID `seq:"reset"`
	State seqsim.SignalID `seq:"state"`
	Step  seqsim.SignalID `seq:"step"`
	IR    seqsim.SignalID `seq:"ir"`
}

// A Sequencer is an instance of a sequencer build registered with a kernel.
type Sequencer struct {
	cfg     *Config
	k       *seqsim.Kernel
	proc    *seqsim.Process
	consts  *seqsim.ConstTable
	sig     core
	drivers map[string]*seqsim.Driver
	inputs  []string
	outputs []string
}

// New declares the signals of cfg in k, builds the sequencer's decode tree and
// registers it as a process sensitive to clk and reset.
//
// Inputs, including clk and reset, are left undriven. Test benches create
// their drivers.
func New(k *seqsim.Kernel, cfg *Config) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}
	consts, err := cfg.ConstTable()
	if err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}
	s := &Sequencer{
		cfg:     cfg,
		k:       k,
		consts:  consts,
		drivers: make(map[string]*seqsim.Driver),
	}
	st := k.Store()

	ins, err := st.DeclareSpec(cfg.Inputs, seqsim.U)
	if err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}
	ports, err := st.DeclareSpec(cfg.Ports, seqsim.U)
	if err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}
	internal, err := st.DeclareSpec(cfg.Signals, seqsim.U)
	if err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}
	states, _ := seqsim.ParseLiterals(cfg.States)
	steps, _ := seqsim.ParseLiterals(cfg.Steps)
	stateID, err := st.DeclareEnum("state", states...)
	if err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}
	stepID, err := st.DeclareEnum("step", steps...)
	if err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}

	sc := seqsim.NewScope(k)
	if err = seqsim.Bind(sc, &s.sig); err != nil {
		return nil, err
	}
	for _, id := range ins {
		s.inputs = append(s.inputs, st.Name(id))
	}
	for _, id := range ports {
		name := st.Name(id)
		s.outputs = append(s.outputs, name)
		s.drivers[name] = sc.Port(name)
	}
	for _, id := range append(internal, stateID, stepID) {
		name := st.Name(id)
		s.drivers[name] = sc.Driver(name)
	}
	if err = sc.Err(); err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}

	b := &builder{s: s, sc: sc}
	root := b.tree()
	if err = sc.Err(); err != nil {
		return nil, errors.Wrap(err, cfg.Name)
	}
	s.proc, err = k.Register(seqsim.ProcessSpec{
		Name:        cfg.Name,
		Sensitivity: []seqsim.SignalID{s.sig.Clk, s.sig.Reset},
		Root:        root,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the sequencer's configuration.
func (s *Sequencer) Config() *Config { return s.cfg }

// Process returns the sequencer process.
func (s *Sequencer) Process() *seqsim.Process { return s.proc }

// Constants returns the sequencer's constant table.
func (s *Sequencer) Constants() *seqsim.ConstTable { return s.consts }

// Inputs returns the names of the input signals.
func (s *Sequencer) Inputs() []string { return s.inputs }

// Outputs returns the names of the output ports.
func (s *Sequencer) Outputs() []string { return s.outputs }

// Driver returns the sequencer's driver for the named signal, or nil if the
// signal is not driven by the sequencer.
func (s *Sequencer) Driver(name string) *seqsim.Driver { return s.drivers[name] }

// State returns the current control state literal. An ordinal outside of the
// state literals is returned as a number.
func (s *Sequencer) State() string {
	st := s.k.Store()
	o := int(st.At(s.sig.State, 0))
	if lits := st.Literals(s.sig.State); o < len(lits) {
		return lits[o]
	}
	return strconv.Itoa(o)
}

// Step returns the current micro-step ordinal.
func (s *Sequencer) Step() int {
	return int(s.k.Store().At(s.sig.Step, 0))
}

// builder compiles a Config into a decode tree. Name resolution failures are
// recorded in the scope.
type builder struct {
	s  *Sequencer
	sc *seqsim.Scope
}

func (b *builder) pos(line int) seqsim.Pos {
	return seqsim.Pos{File: b.s.cfg.Source, Line: line}
}

// tree builds:
//
//	if reset = '1' then <reset>
//	elsif rising_edge(clk) then
//		case state is
//		when <fetch> => case step is ... end case;
//		when <exec> =>
//			case ir is
//			when <opcode> => case step is ... end case;
//			when others => <default>
//			end case;
//		when others => null;
//		end case;
//	end if;
func (b *builder) tree() seqsim.Node {
	c, sig := b.s.cfg, &b.s.sig
	st := b.s.k.Store()

	sw := &seqsim.Switch{
		Pos:    b.pos(c.StateLine),
		Signal: sig.State,
		Cases:  make([]seqsim.Node, len(st.Literals(sig.State))),
	}
	for i := range sw.Cases {
		sw.Cases[i] = &seqsim.Leaf{Pos: b.pos(c.StateLine)}
	}
	sw.Cases[b.sc.Literal("state", c.FetchState)] = b.steps(c.FetchLine, c.Fetch)

	m := &seqsim.Match{
		Pos:     b.pos(c.DecodeLine),
		Signal:  sig.IR,
		Default: b.leaf(c.Default),
	}
	for _, o := range c.Opcodes {
		p, err := b.s.consts.Constant(o.Pattern)
		if err != nil {
			b.sc.Errorf("opcode %s: %v", o.Name, err)
			continue
		}
		m.Cases = append(m.Cases, seqsim.MatchCase{Pattern: p, Node: b.steps(o.Line, o.Steps)})
	}
	sw.Cases[b.sc.Literal("state", c.ExecState)] = m

	return &seqsim.Branch{
		Pos:  b.pos(c.ProcessLine),
		Cond: seqsim.Level{Signal: sig.Reset, Value: seqsim.Hi},
		Then: b.leaf(c.Reset),
		Else: &seqsim.Branch{
			Pos:  b.pos(c.ProcessLine),
			Cond: seqsim.RisingEdge{Signal: sig.Clk},
			Then: sw,
			Else: &seqsim.Leaf{Pos: b.pos(c.ProcessLine)},
		},
	}
}

// steps builds a case statement on the micro-step. Steps with no block fall
// to a null leaf.
func (b *builder) steps(line int, blocks []Block) seqsim.Node {
	sw := &seqsim.Switch{
		Pos:     b.pos(line),
		Signal:  b.s.sig.Step,
		Default: &seqsim.Leaf{Pos: b.pos(line)},
	}
	for _, blk := range blocks {
		sw.Cases = append(sw.Cases, b.leaf(blk))
	}
	return sw
}

func (b *builder) leaf(blk Block) *seqsim.Leaf {
	l := &seqsim.Leaf{Pos: b.pos(blk.Line)}
	if blk.Continue {
		l.Resume = seqsim.Continue
	}
	for _, op := range blk.Ops {
		if a := b.action(op); a != nil {
			l.Actions = append(l.Actions, a)
		}
	}
	return l
}

func (b *builder) action(op Op) seqsim.Action {
	d := b.s.drivers[op.Dst]
	if d == nil {
		b.sc.Errorf("line %d: signal %q is not driven by the sequencer", op.Line, op.Dst)
		return nil
	}
	pos := b.pos(op.Line)
	st := b.s.k.Store()
	enum := st.Literals(d.Signal()) != nil
	if enum && (op.Src != "" || op.Incr != "" || op.Const != nil) {
		b.sc.Errorf("line %d: %s is enumerated and only takes literal values", op.Line, op.Dst)
		return nil
	}
	switch {
	case op.Src != "" && op.Incr != "":
		a, err := seqsim.ParseVector(op.Incr)
		if err != nil || len(a) != 1 {
			b.sc.Errorf("line %d: invalid addend %q", op.Line, op.Incr)
			return nil
		}
		return &seqsim.Increment{Pos: pos, Dst: d, Src: b.sc.Signal(op.Src), Addend: a[0]}
	case op.Src != "":
		return &seqsim.Copy{Pos: pos, Dst: d, Src: b.sc.Signal(op.Src)}
	case op.Const != nil:
		v, err := b.s.consts.Constant(*op.Const)
		if err != nil {
			b.sc.Errorf("line %d: %v", op.Line, err)
			return nil
		}
		return &seqsim.Assign{Pos: pos, Dst: d, Value: v}
	case enum:
		return &seqsim.Assign{Pos: pos, Dst: d, Value: seqsim.Vector{b.sc.Literal(op.Dst, op.Value)}}
	default:
		v, err := seqsim.ParseVector(op.Value)
		if err != nil {
			b.sc.Errorf("line %d: %v", op.Line, err)
			return nil
		}
		return &seqsim.Assign{Pos: pos, Dst: d, Value: v}
	}
}
