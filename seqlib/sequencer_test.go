// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqlib_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/db47h/seqsim"
	"github.com/db47h/seqsim/seqlib"
	"github.com/pkg/errors"
)

var _ = Describe("Sequencer", func() {
	var r *rig

	Describe("Reset", func() {
		BeforeEach(func() {
			r = newRig(seqlib.TestBench1())
			r.drive("reset", seqsim.MustVector("1"))
		})

		It("should drive every control output to its reset value", func() {
			Expect(r.get("ram_wr")).To(Equal("0"))
			Expect(r.get("ext_wr")).To(Equal("0"))
			Expect(r.get("ram_addr")).To(Equal("0000000000000000"))
			Expect(r.get("ext_addr")).To(Equal("0000000000000000"))
			Expect(r.get("ram_data")).To(Equal("0000000000000000"))
			Expect(r.get("ext_data")).To(Equal("1111111111111111"))
			Expect(r.get("dptr")).To(Equal("1111111111111111"))
			for _, n := range []string{"acc_we", "acc_rd", "b_we", "psw_we", "halt", "int_pending"} {
				Expect(r.get(n)).To(Equal("0"), n)
			}
			Expect(r.get("ir")).To(Equal("00000000"))
			Expect(r.get("pc")).To(Equal("0000000000000000"))
		})

		It("should enter the fetch state", func() {
			s, n := r.at()
			Expect(s).To(Equal("fetch"))
			Expect(n).To(Equal(0))
		})

		It("should not touch lines it does not reset", func() {
			Expect(r.get("rom_rd")).To(Equal("U"))
			Expect(r.get("alu_op")).To(Equal("UUUUUUUU"))
		})

		It("should be idempotent", func() {
			before := r.snapshot()
			r.edge()
			r.edge()
			Expect(r.snapshot()).To(Equal(before))
			s, n := r.at()
			Expect(s).To(Equal("fetch"))
			Expect(n).To(Equal(0))
		})

		It("should take precedence over a pending instruction", func() {
			r.drive("reset", seqsim.MustVector("0"))
			r.forceLit("state", "execute")
			r.force("ir", seqsim.MustVector(seqlib.OpCLRA))
			r.edge()
			Expect(r.get("acc_we")).To(Equal("1"))
			r.drive("reset", seqsim.MustVector("1"))
			Expect(r.get("acc_we")).To(Equal("0"))
			s, n := r.at()
			Expect(s).To(Equal("fetch"))
			Expect(n).To(Equal(0))
		})
	})

	Describe("Fetch", func() {
		BeforeEach(func() {
			r = newRig(seqlib.TestBench1())
			r.reset()
			r.drive("rom_data", seqsim.MustVector(seqlib.OpINCA))
		})

		It("should address the ROM at pc", func() {
			r.edge()
			Expect(r.get("rom_addr")).To(Equal("0000000000000000"))
			Expect(r.get("rom_rd")).To(Equal("1"))
			s, n := r.at()
			Expect(s).To(Equal("fetch"))
			Expect(n).To(Equal(1))
		})

		It("should load ir and move to execute", func() {
			r.edge()
			r.edge()
			Expect(r.get("ir")).To(Equal(seqlib.OpINCA))
			Expect(r.get("pc")).To(Equal("0000000000000001"))
			s, n := r.at()
			Expect(s).To(Equal("execute"))
			Expect(n).To(Equal(0))
		})

		It("should ignore falling edges", func() {
			r.drive("clk", seqsim.MustVector("1"))
			r.drive("clk", seqsim.MustVector("0"))
			_, n := r.at()
			Expect(n).To(Equal(1))
			r.drive("clk", seqsim.MustVector("0"))
			_, n = r.at()
			Expect(n).To(Equal(1))
		})

		It("should report source positions in order", func() {
			r.edge()
			Expect(r.lines).To(ContainElements(75, 91, 94, 96, 97, 98))
			Expect(r.lines[len(r.lines)-3:]).To(Equal([]int{96, 97, 98}))
		})

		It("should update pc after the step in the i8051 build", func() {
			r = newRig(seqlib.I8051Top())
			r.reset()
			r.drive("rom_data", seqsim.MustVector(seqlib.OpNOP))
			r.edge()
			r.edge()
			Expect(r.lines[len(r.lines)-4:]).To(Equal([]int{102, 103, 104, 105}))
			Expect(r.get("pc")).To(Equal("0000000000000001"))
		})
	})

	Describe("Execute", func() {
		execute := func(cfg *seqlib.Config, op string) {
			r = newRig(cfg)
			r.reset()
			r.force("ir", seqsim.MustVector(op))
			r.forceLit("state", "execute")
		}

		It("should walk the NOP micro-steps", func() {
			// constant pattern at offset 10317 in the i8051 build
			execute(seqlib.I8051Top(), seqlib.OpNOP)
			before := r.snapshot()
			for step := 1; step <= 2; step++ {
				r.edge()
				s, n := r.at()
				Expect(s).To(Equal("execute"))
				Expect(n).To(Equal(step))
			}
			r.edge()
			s, n := r.at()
			Expect(s).To(Equal("fetch"))
			Expect(n).To(Equal(0))
			Expect(r.snapshot()).To(Equal(before))
			Expect(r.diags).To(BeEmpty())
		})

		It("should clear the accumulator on CLR A", func() {
			execute(seqlib.TestBench1(), seqlib.OpCLRA)
			r.edge()
			Expect(r.get("alu_op")).To(Equal(seqlib.ALUPassB))
			Expect(r.get("alu_b")).To(Equal("00000000"))
			Expect(r.get("acc_we")).To(Equal("1"))
			r.edge()
			Expect(r.get("acc_we")).To(Equal("0"))
			_, n := r.at()
			Expect(n).To(Equal(2))
			r.edge()
			s, _ := r.at()
			Expect(s).To(Equal("fetch"))
		})

		It("should load an immediate on MOV A,#data", func() {
			execute(seqlib.TestBench1(), seqlib.OpMOVAImm)
			r.force("pc", seqsim.FromUint(16, 5))
			r.edge()
			Expect(r.get("rom_addr")).To(Equal("0000000000000101"))
			Expect(r.get("rom_rd")).To(Equal("1"))
			r.drive("rom_data", seqsim.FromUint(8, 0x42))
			r.edge()
			Expect(r.get("alu_b")).To(Equal("01000010"))
			Expect(r.get("alu_op")).To(Equal(seqlib.ALUPassB))
			Expect(r.get("acc_we")).To(Equal("1"))
			r.edge()
			Expect(r.get("acc_we")).To(Equal("0"))
			Expect(r.get("rom_rd")).To(Equal("0"))
			Expect(r.get("pc")).To(Equal("0000000000000110"))
			s, n := r.at()
			Expect(s).To(Equal("fetch"))
			Expect(n).To(Equal(0))
		})

		It("should increment the accumulator on INC A", func() {
			execute(seqlib.TestBench1(), seqlib.OpINCA)
			r.drive("acc", seqsim.FromUint(8, 0xff))
			r.edge()
			Expect(r.get("acc_rd")).To(Equal("1"))
			r.edge()
			Expect(r.get("acc_rd")).To(Equal("0"))
			Expect(r.get("alu_b")).To(Equal("00000000"))
			r.edge()
			Expect(r.get("acc_we")).To(Equal("1"))
			_, n := r.at()
			Expect(n).To(Equal(3))
			r.edge()
			Expect(r.get("acc_we")).To(Equal("0"))
			s, _ := r.at()
			Expect(s).To(Equal("fetch"))
		})

		It("should propagate unknowns through the increment", func() {
			execute(seqlib.TestBench1(), seqlib.OpINCA)
			r.edge()
			r.edge()
			Expect(r.get("alu_b")).To(Equal("XXXXXXXX"))
		})

		It("should return to fetch on an unmatched opcode", func() {
			execute(seqlib.I8051Top(), seqlib.OpMOVAImm)
			before := r.snapshot()
			r.edge()
			s, n := r.at()
			Expect(s).To(Equal("fetch"))
			Expect(n).To(Equal(0))
			Expect(r.snapshot()).To(Equal(before))
			Expect(r.lines).To(ContainElements(110, 161, 162))
		})

		It("should do nothing in the halt state", func() {
			r = newRig(seqlib.TestBench1())
			r.reset()
			r.forceLit("state", "halt")
			before := r.snapshot()
			r.edge()
			s, n := r.at()
			Expect(s).To(Equal("halt"))
			Expect(n).To(Equal(0))
			Expect(r.snapshot()).To(Equal(before))
		})
	})

	Describe("Determinism", func() {
		It("should produce identical updates from identical inputs", func() {
			r1, r2 := newRig(seqlib.TestBench1()), newRig(seqlib.TestBench1())
			program := []string{seqlib.OpMOVAImm, "00010001", seqlib.OpINCA, seqlib.OpNOP, seqlib.OpCLRA, "11111111"}
			for _, x := range []*rig{r1, r2} {
				x.reset()
			}
			for i := 0; i < 40; i++ {
				for _, x := range []*rig{r1, r2} {
					x.drive("rom_data", seqsim.MustVector(program[i%len(program)]))
					x.drive("acc", seqsim.FromUint(8, uint64(i)))
					x.edge()
				}
				Expect(r1.snapshot()).To(Equal(r2.snapshot()))
				Expect(r1.lines).To(Equal(r2.lines))
			}
		})
	})

	Describe("Diagnostics", func() {
		It("should report width mismatches and keep going", func() {
			cfg := seqlib.TestBench1()
			nop := &cfg.Opcodes[0].Steps[0]
			nop.Ops = append([]seqlib.Op{{Line: 117, Dst: "alu_b", Value: "1111"}}, nop.Ops...)
			r = newRig(cfg)
			r.reset()
			r.force("ir", seqsim.MustVector(seqlib.OpNOP))
			r.forceLit("state", "execute")
			r.edge()
			Expect(r.diags).To(HaveLen(1))
			d := r.diags[0]
			Expect(d.Pos.Line).To(Equal(117))
			var we *seqsim.WidthError
			Expect(errors.As(d.Err, &we)).To(BeTrue())
			Expect(we.Want).To(Equal(8))
			Expect(we.Got).To(Equal(4))
			Expect(r.get("alu_b")).To(Equal("1111UUUU"))
			_, n := r.at()
			Expect(n).To(Equal(1))
		})

		It("should abort the step on a pattern width mismatch", func() {
			cfg := seqlib.TestBench1()
			cfg.Signals = "ir[4], pc[16], tmp1[8], tmp2[8], int_pending"
			cfg.Reset.Ops[12].Value = "0000" // ir
			r = newRig(cfg)
			r.reset()
			r.forceLit("state", "execute")
			r.edge()
			Expect(r.diags).To(HaveLen(1))
			se, ok := r.diags[0].Err.(*seqsim.StepError)
			Expect(ok).To(BeTrue())
			Expect(se.Pos.Line).To(Equal(111))
			_, ok = errors.Cause(se).(*seqsim.WidthError)
			Expect(ok).To(BeTrue())
			s, n := r.at()
			Expect(s).To(Equal("execute"))
			Expect(n).To(Equal(0))
		})
	})

	Describe("New", func() {
		It("should reject ops on unknown signals", func() {
			cfg := seqlib.TestBench1()
			cfg.Default.Ops = append(cfg.Default.Ops, seqlib.Op{Line: 204, Dst: "pc", Src: "nope"})
			_, err := seqlib.New(seqsim.NewKernel(nil), cfg)
			Expect(err).To(HaveOccurred())
			Expect(errors.Cause(err)).To(Equal(seqsim.ErrNoSignal))
		})

		It("should reject ops on undriven signals", func() {
			cfg := seqlib.TestBench1()
			cfg.Default.Ops = append(cfg.Default.Ops, seqlib.Op{Line: 204, Dst: "acc", Value: "00000000"})
			_, err := seqlib.New(seqsim.NewKernel(nil), cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("not driven"))
		})

		It("should reject missing constants", func() {
			cfg := seqlib.TestBench1()
			off := 1
			cfg.Default.Ops = append(cfg.Default.Ops, seqlib.Op{Line: 204, Dst: "alu_b", Const: &off})
			_, err := seqlib.New(seqsim.NewKernel(nil), cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no constant"))
		})

		It("should reject raw writes to state and step", func() {
			alu := 2608
			for _, op := range []seqlib.Op{
				{Line: 204, Dst: "state", Src: "dptr"},
				{Line: 204, Dst: "step", Src: "step", Incr: "1"},
				{Line: 204, Dst: "state", Const: &alu},
			} {
				cfg := seqlib.TestBench1()
				cfg.Opcodes[0].Steps[0].Ops = append(cfg.Opcodes[0].Steps[0].Ops, op)
				_, err := seqlib.New(seqsim.NewKernel(nil), cfg)
				Expect(err).To(HaveOccurred(), op.Dst)
				Expect(err.Error()).To(ContainSubstring("only takes literal values"))
			}
		})

		It("should report an out of range state as its ordinal", func() {
			r = newRig(seqlib.TestBench1())
			r.reset()
			r.force("state", seqsim.Vector{3})
			Expect(r.seq.State()).To(Equal("3"))
			r.edge()
			Expect(r.seq.State()).To(Equal("3"))
		})

		It("should reject a second instance in the same kernel", func() {
			k := seqsim.NewKernel(nil)
			_, err := seqlib.New(k, seqlib.TestBench1())
			Expect(err).NotTo(HaveOccurred())
			_, err = seqlib.New(k, seqlib.TestBench1())
			Expect(err).To(HaveOccurred())
		})

		It("should expose the constant table", func() {
			s, err := seqlib.New(seqsim.NewKernel(nil), seqlib.I8051Top())
			Expect(err).NotTo(HaveOccurred())
			v, err := s.Constants().Constant(10317)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.String()).To(Equal(seqlib.OpNOP))
			Expect(s.Constants().Name(10325)).To(Equal("CLR_A"))
			Expect(s.Process().Sensitivity()).To(HaveLen(2))
		})
	})
})
