// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package seqtest provides a test bench for sequencer builds.
package seqtest

import (
	"github.com/db47h/seqsim"
	"github.com/db47h/seqsim/seqlib"
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"
)

// Freq is the bench clock frequency.
const Freq = 10 * sim.MHz

// pins holds the bench side of the sequencer interface.
type pins struct {
	Clk     seqsim.SignalID `seq:"clk"`
	Reset   *seqsim.Driver  `seq:"reset"`
	ROMData *seqsim.Driver  `seq:"rom_data"`
	Acc     *seqsim.Driver  `seq:"acc"`
	ROMAddr seqsim.SignalID `seq:"rom_addr"`
	ROMRd   seqsim.SignalID `seq:"rom_rd"`
	AccWE   seqsim.SignalID `seq:"acc_we"`
	ALUB    seqsim.SignalID `seq:"alu_b"`
}

// A Bench wraps a sequencer with a clock, a program ROM and an accumulator.
//
// The ROM is combinational: while rom_rd is '1', rom_data follows the ROM
// byte at rom_addr. Unmapped addresses read as all X. The accumulator is a
// register loaded with alu_b on a rising clock edge if acc_we was '1' before
// that edge.
type Bench struct {
	// OnCycle, if not nil, is called after every rising clock edge.
	OnCycle func(b *Bench) error

	k      *seqsim.Kernel
	seq    *seqlib.Sequencer
	engine sim.Engine
	clock  *seqsim.Clock
	io     pins
	rom    []byte

	we      bool
	operand seqsim.Vector
	cycles  uint64
}

// NewBench creates a new bench running a sequencer built from cfg, with the
// program rom. If log is nil, the logrus standard logger is used.
func NewBench(cfg *seqlib.Config, rom []byte, log logrus.FieldLogger) (*Bench, error) {
	k := seqsim.NewKernel(log)
	seq, err := seqlib.New(k, cfg)
	if err != nil {
		return nil, err
	}
	b := &Bench{k: k, seq: seq, rom: append([]byte(nil), rom...)}
	sc := seqsim.NewScope(k)
	if err = seqsim.Bind(sc, &b.io); err != nil {
		return nil, err
	}
	if err = sc.Err(); err != nil {
		return nil, errors.Wrap(err, "bench")
	}
	if _, err = k.Register(b.romProcess()); err != nil {
		return nil, errors.Wrap(err, "bench")
	}
	b.engine = sim.NewSerialEngine()
	b.clock, err = seqsim.NewClock(k, b.io.Clk, b.engine, Freq)
	if err != nil {
		return nil, errors.Wrap(err, "bench")
	}
	b.clock.OnEdge = b.edge
	if err = k.Start(); err != nil {
		return nil, err
	}
	return b, nil
}

// romProcess builds the ROM decoder:
//
//	if rom_rd = '1' then
//		case rom_addr is
//		when <addr> => rom_data <= <byte>;
//		when others => rom_data <= (others => 'X');
//		end case;
//	end if;
func (b *Bench) romProcess() seqsim.ProcessSpec {
	st := b.k.Store()
	aw := st.Width(b.io.ROMAddr)
	dw := st.Width(b.io.ROMData.Signal())
	m := &seqsim.Match{
		Signal:  b.io.ROMAddr,
		Default: &seqsim.Leaf{Actions: []seqsim.Action{&seqsim.Assign{Dst: b.io.ROMData, Value: seqsim.Fill(dw, seqsim.X)}}},
	}
	for addr, v := range b.rom {
		m.Cases = append(m.Cases, seqsim.MatchCase{
			Pattern: seqsim.FromUint(aw, uint64(addr)),
			Node:    &seqsim.Leaf{Actions: []seqsim.Action{&seqsim.Assign{Dst: b.io.ROMData, Value: seqsim.FromUint(dw, uint64(v))}}},
		})
	}
	return seqsim.ProcessSpec{
		Name:        "rom",
		Sensitivity: []seqsim.SignalID{b.io.ROMAddr, b.io.ROMRd},
		Root: &seqsim.Branch{
			Cond: seqsim.Level{Signal: b.io.ROMRd, Value: seqsim.Hi},
			Then: m,
			Else: &seqsim.Leaf{},
		},
	}
}

func (b *Bench) edge(level seqsim.Logic) error {
	st := b.k.Store()
	if level != seqsim.Hi {
		b.we = st.At(b.io.AccWE, 0) == seqsim.Hi
		b.operand = st.Read(b.io.ALUB)
		return nil
	}
	if b.we {
		b.we = false
		if err := b.io.Acc.Schedule(b.operand); err != nil {
			return err
		}
		if err := b.k.Settle(); err != nil {
			return err
		}
	}
	b.cycles++
	if b.OnCycle != nil {
		return b.OnCycle(b)
	}
	return nil
}

func (b *Bench) set(d *seqsim.Driver, v seqsim.Vector) error {
	if err := d.Schedule(v); err != nil {
		return err
	}
	return b.k.Settle()
}

// Reset holds reset high for one clock cycle and clears the accumulator.
func (b *Bench) Reset() error {
	if err := b.set(b.io.Reset, seqsim.Vector{seqsim.Hi}); err != nil {
		return err
	}
	if err := b.set(b.io.Acc, seqsim.Fill(b.k.Store().Width(b.io.Acc.Signal()), seqsim.Lo)); err != nil {
		return err
	}
	if err := b.TickTock(); err != nil {
		return err
	}
	return b.set(b.io.Reset, seqsim.Vector{seqsim.Lo})
}

// SetReset drives the reset input.
func (b *Bench) SetReset(l seqsim.Logic) error {
	return b.set(b.io.Reset, seqsim.Vector{l})
}

// Tick runs the clock up to and including the next rising edge.
func (b *Bench) Tick() error {
	if b.clock.Level() == seqsim.Hi {
		if err := b.clock.Step(); err != nil {
			return err
		}
	}
	return b.clock.Step()
}

// Tock runs the clock up to and including the next falling edge.
func (b *Bench) Tock() error {
	if b.clock.Level() != seqsim.Hi {
		if err := b.clock.Step(); err != nil {
			return err
		}
	}
	return b.clock.Step()
}

// TickTock runs a full clock cycle: a rising edge then a falling edge.
func (b *Bench) TickTock() error {
	if err := b.Tick(); err != nil {
		return err
	}
	return b.Tock()
}

// Run runs the given number of clock cycles.
func (b *Bench) Run(cycles int) error {
	for i := 0; i < cycles; i++ {
		if err := b.TickTock(); err != nil {
			return errors.Wrapf(err, "cycle %d", b.cycles)
		}
	}
	return nil
}

// Kernel returns the bench kernel.
func (b *Bench) Kernel() *seqsim.Kernel { return b.k }

// Sequencer returns the sequencer under test.
func (b *Bench) Sequencer() *seqlib.Sequencer { return b.seq }

// Clock returns the bench clock.
func (b *Bench) Clock() *seqsim.Clock { return b.clock }

// Cycles returns the number of rising clock edges so far.
func (b *Bench) Cycles() uint64 { return b.cycles }

// Get returns the value of the named signal. It panics if there is no such
// signal.
func (b *Bench) Get(name string) seqsim.Vector {
	st := b.k.Store()
	id, err := st.Lookup(name)
	if err != nil {
		panic(err)
	}
	return st.Read(id)
}

// GetUint returns the value of the named signal as an unsigned integer. The
// boolean result is false if the value has elements other than '0' and '1'.
func (b *Bench) GetUint(name string) (uint64, bool) {
	return b.Get(name).Uint()
}

// State returns the sequencer control state and micro-step.
func (b *Bench) State() (string, int) {
	return b.seq.State(), b.seq.Step()
}
