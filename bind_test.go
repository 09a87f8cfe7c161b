// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim_test

import (
	"strings"
	"testing"

	"github.com/db47h/seqsim"
	"github.com/pkg/errors"
)

type testPins struct {
	Clk     seqsim.SignalID `seq:""`
	IR      seqsim.SignalID `seq:"ir"`
	PC      *seqsim.Driver  `seq:"pc"`
	ALUB    *seqsim.Driver  `seq:"alu_b,port"`
	Ignored int
	Skipped seqsim.SignalID `seq:"-"`
}

func TestBind(t *testing.T) {
	k := seqsim.NewKernel(quietLog())
	declare(t, k, "clk, ir[8], pc[16], alu_b[8]")
	s := seqsim.NewScope(k)
	var p testPins
	if err := seqsim.Bind(s, &p); err != nil {
		t.Fatal(err)
	}
	if err := s.Err(); err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	st := k.Store()
	if st.Name(p.Clk) != "clk" || st.Name(p.IR) != "ir" {
		t.Fatalf("got %q, %q", st.Name(p.Clk), st.Name(p.IR))
	}
	if p.PC == nil || p.PC.Port() != nil || st.Name(p.PC.Signal()) != "pc" {
		t.Fatal("pc: bad direct driver")
	}
	if p.ALUB == nil || p.ALUB.Port() == nil || p.ALUB.Port().Name != "alu_b" {
		t.Fatal("alu_b: bad port driver")
	}
	if k.Drivers().Ports() != 1 {
		t.Fatalf("got %d ports", k.Drivers().Ports())
	}
	if p.Skipped != 0 {
		t.Fatal("skipped field was bound")
	}
}

func TestBind_errors(t *testing.T) {
	k := seqsim.NewKernel(quietLog())
	declare(t, k, "clk, ir[8]")
	s := seqsim.NewScope(k)
	if err := seqsim.Bind(s, testPins{}); err == nil {
		t.Fatal("bound a non-pointer")
	}
	var p testPins
	if err := seqsim.Bind(s, &p); err != nil {
		t.Fatal(err)
	}
	err := s.Err()
	if err == nil {
		t.Fatal("missing signals not reported")
	}
	// the first failure gives the cause, all of them are listed
	if errors.Cause(err) != seqsim.ErrNoSignal {
		t.Fatalf("got cause %v", errors.Cause(err))
	}
	if msg := err.Error(); !strings.Contains(msg, "pc") || !strings.Contains(msg, "alu_b") {
		t.Fatalf("got %q", msg)
	}
	if p.PC != nil || p.ALUB != nil {
		t.Fatal("drivers for missing signals")
	}

	var bad struct {
		X string `seq:"clk"`
	}
	s = seqsim.NewScope(k)
	if err = seqsim.Bind(s, &bad); err != nil {
		t.Fatal(err)
	}
	if s.Err() == nil {
		t.Fatal("bound a string field")
	}
}

func TestScope_literal(t *testing.T) {
	k := seqsim.NewKernel(quietLog())
	if _, err := k.Store().DeclareEnum("state", "fetch", "execute"); err != nil {
		t.Fatal(err)
	}
	s := seqsim.NewScope(k)
	if l := s.Literal("state", "execute"); l != 1 {
		t.Fatalf("got %d", l)
	}
	if s.Err() != nil {
		t.Fatal(s.Err())
	}
	s.Literal("state", "halt")
	s.Errorf("custom %d", 42)
	if err := s.Err(); err == nil || !strings.Contains(err.Error(), "custom 42") {
		t.Fatalf("got %v", err)
	}
	if s.Kernel() != k {
		t.Fatal("wrong kernel")
	}
}

func TestParseDecls(t *testing.T) {
	ds, err := seqsim.ParseDecls("clk, ir[8],pc[16]")
	if err != nil {
		t.Fatal(err)
	}
	want := []seqsim.Decl{{Name: "clk", Width: 1}, {Name: "ir", Width: 8}, {Name: "pc", Width: 16}}
	if len(ds) != len(want) {
		t.Fatalf("got %v", ds)
	}
	for i := range want {
		if ds[i] != want[i] {
			t.Errorf("got %v, expected %v", ds[i], want[i])
		}
	}
	lits, err := seqsim.ParseLiterals("fetch, execute, halt")
	if err != nil || strings.Join(lits, " ") != "fetch execute halt" {
		t.Fatalf("got %v, %v", lits, err)
	}
	for _, in := range []string{"a[", "a[x]", "a b", "a,,b"} {
		if _, err = seqsim.ParseDecls(in); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
	if _, err = seqsim.ParseLiterals("a, b[2]"); err == nil {
		t.Error("width in literal list")
	}
}
