// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqlib

import "strings"

// Opcode patterns.
const (
	OpNOP     = "00000000"
	OpCLRA    = "11100100" // CLR A
	OpMOVAImm = "01110100" // MOV A,#data
	OpINCA    = "00000100" // INC A
)

// ALUPassB is the ALU operation that passes operand B through to the
// accumulator.
const ALUPassB = "00000001"

const (
	source  = "sequencer2.vhd"
	inputs  = "clk, reset, rom_data[8], acc[8]"
	ports   = "ram_wr, ext_wr, ram_addr[16], ext_addr[16], ram_data[16], ext_data[16], acc_we, acc_rd, b_we, psw_we, dptr[16], halt, rom_addr[16], rom_rd, alu_op[8], alu_b[8]"
	signals = "ir[8], pc[16], tmp1[8], tmp2[8], int_pending"
	states  = "fetch, execute, halt"
	steps   = "t0, t1, t2, t3, t4, t5, t6, t7, t8, t9, t10"
)

func set(line int, dst, value string) Op { return Op{Line: line, Dst: dst, Value: value} }
func cp(line int, dst, src string) Op { return Op{Line: line, Dst: dst, Src: src} }
func inc(line int, dst, src string) Op { return Op{Line: line, Dst: dst, Src: src, Incr: "1"} }
func ld(line int, dst string, off int) Op {
	return Op{Line: line, Dst: dst, Const: &off}
}

func zeros(n int) string { return strings.Repeat("0", n) }
func ones(n int) string { return strings.Repeat("1", n) }

func block(line int, ops ...Op) Block { return Block{Line: line, Ops: ops} }

// resetBlock is shared by both builds.
func resetBlock() Block {
	return block(76,
		set(76, "state", "fetch"),
		set(77, "step", "t0"),
		set(78, "ram_wr", "0"),
		set(78, "ext_wr", "0"),
		set(79, "ram_addr", zeros(16)),
		set(79, "ext_addr", zeros(16)),
		set(80, "ram_data", zeros(16)),
		set(80, "ext_data", ones(16)),
		set(81, "acc_we", "0"),
		set(81, "acc_rd", "0"),
		set(81, "b_we", "0"),
		set(81, "psw_we", "0"),
		set(82, "ir", zeros(8)),
		set(83, "pc", zeros(16)),
		set(85, "tmp1", zeros(8)),
		set(86, "tmp2", zeros(8)),
		set(87, "dptr", ones(16)),
		set(88, "int_pending", "0"),
		set(89, "halt", "0"),
	)
}

func base(name string) *Config {
	return &Config{
		Name:        name,
		Source:      source,
		Inputs:      inputs,
		Ports:       ports,
		Signals:     signals,
		States:      states,
		Steps:       steps,
		FetchState:  "fetch",
		ExecState:   "execute",
		ProcessLine: 75,
		StateLine:   91,
		FetchLine:   94,
		Reset:       resetBlock(),
	}
}

// TestBench1 returns the test bench build of the sequencer. It decodes NOP,
// CLR A, MOV A,#data and INC A.
func TestBench1() *Config {
	const (
		aluPassB = 2608
		nop      = 17689
		clrA     = 17697
		movAImm  = 17705
		incA     = 17713
		zero     = 17721
	)
	c := base("test_bench1")
	c.DecodeLine = 111
	c.Constants = []Constant{
		{Offset: aluPassB, Name: "ALU_PASS_B", Bits: ALUPassB},
		{Offset: nop, Name: "NOP", Bits: OpNOP},
		{Offset: clrA, Name: "CLR_A", Bits: OpCLRA},
		{Offset: movAImm, Name: "MOV_A_IMM", Bits: OpMOVAImm},
		{Offset: incA, Name: "INC_A", Bits: OpINCA},
		{Offset: zero, Bits: zeros(8)},
	}
	c.Fetch = []Block{
		block(96,
			cp(96, "rom_addr", "pc"),
			set(97, "rom_rd", "1"),
			set(98, "step", "t1")),
		block(102,
			cp(102, "ir", "rom_data"),
			set(103, "state", "execute"),
			inc(104, "pc", "pc"),
			set(105, "step", "t0")),
	}
	c.Opcodes = []Opcode{
		{Name: "NOP", Line: 115, Pattern: nop, Steps: []Block{
			block(118, set(118, "step", "t1")),
			block(121, set(121, "step", "t2")),
			block(124, set(124, "step", "t0"), set(125, "state", "fetch")),
		}},
		{Name: "CLR A", Line: 130, Pattern: clrA, Steps: []Block{
			block(132,
				ld(132, "alu_op", aluPassB),
				ld(133, "alu_b", zero),
				set(134, "acc_we", "1"),
				set(135, "step", "t1")),
			block(138, set(138, "acc_we", "0"), set(139, "step", "t2")),
			block(142, set(142, "step", "t0"), set(143, "state", "fetch")),
		}},
		{Name: "MOV A,#data", Line: 148, Pattern: movAImm, Steps: []Block{
			block(150,
				cp(150, "rom_addr", "pc"),
				set(151, "rom_rd", "1"),
				set(152, "step", "t1")),
			block(155,
				cp(155, "alu_b", "rom_data"),
				ld(156, "alu_op", aluPassB),
				set(157, "acc_we", "1"),
				set(158, "step", "t2")),
			block(162,
				set(162, "acc_we", "0"),
				inc(163, "pc", "pc"),
				set(164, "rom_rd", "0"),
				set(165, "step", "t0"),
				set(166, "state", "fetch")),
		}},
		{Name: "INC A", Line: 172, Pattern: incA, Steps: []Block{
			block(174,
				ld(174, "alu_op", aluPassB),
				set(175, "acc_rd", "1"),
				set(176, "step", "t1")),
			block(179,
				set(179, "acc_rd", "0"),
				inc(180, "alu_b", "acc"),
				set(182, "step", "t2")),
			block(185, set(185, "acc_we", "1"), set(187, "step", "t3")),
			block(190,
				set(190, "acc_we", "0"),
				set(192, "step", "t0"),
				set(193, "state", "fetch")),
		}},
	}
	c.Default = block(202, set(202, "step", "t0"), set(203, "state", "fetch"))
	return c
}

// I8051Top returns the top level build of the sequencer. It only decodes NOP
// and CLR A, and its fetch cycle updates the step before the program counter.
func I8051Top() *Config {
	const (
		aluPassB = 1488
		nop      = 10317
		clrA     = 10325
		zero     = 10333
	)
	c := base("i8051_top")
	c.DecodeLine = 110
	c.Constants = []Constant{
		{Offset: aluPassB, Name: "ALU_PASS_B", Bits: ALUPassB},
		{Offset: nop, Name: "NOP", Bits: OpNOP},
		{Offset: clrA, Name: "CLR_A", Bits: OpCLRA},
		{Offset: zero, Bits: zeros(8)},
	}
	c.Fetch = []Block{
		block(96,
			cp(96, "rom_addr", "pc"),
			set(97, "rom_rd", "1"),
			set(98, "step", "t1")),
		block(102,
			cp(102, "ir", "rom_data"),
			set(103, "state", "execute"),
			set(104, "step", "t0"),
			inc(105, "pc", "pc")),
	}
	c.Opcodes = []Opcode{
		{Name: "NOP", Line: 114, Pattern: nop, Steps: []Block{
			block(117, set(117, "step", "t1")),
			block(120, set(120, "step", "t2")),
			block(123, set(123, "step", "t0"), set(124, "state", "fetch")),
		}},
		{Name: "CLR A", Line: 129, Pattern: clrA, Steps: []Block{
			block(131,
				ld(131, "alu_op", aluPassB),
				ld(132, "alu_b", zero),
				set(133, "acc_we", "1"),
				set(134, "step", "t1")),
			block(137, set(137, "acc_we", "0"), set(138, "step", "t2")),
			block(141, set(141, "step", "t0"), set(142, "state", "fetch")),
		}},
	}
	c.Default = block(161, set(161, "step", "t0"), set(162, "state", "fetch"))
	return c
}

// Variants returns the known builds by name.
func Variants() map[string]func() *Config {
	return map[string]func() *Config{
		"tb1":   TestBench1,
		"i8051": I8051Top,
	}
}
