// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/seqsim/seqlib"
	"github.com/sirupsen/logrus"
)

// shared returns the outputs present in both a and b, in the order of a.
func shared(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, n := range b {
		in[n] = true
	}
	var out []string
	for _, n := range a {
		if in[n] {
			out = append(out, n)
		}
	}
	return out
}

// Diff runs two sequencer builds side by side on the same program for the
// given number of clock cycles, starting with a reset. It stops at the first
// cycle where the control state or a shared output differs and returns a
// description of the difference. It returns an empty string if both builds
// behave the same.
func Diff(cfg1, cfg2 *seqlib.Config, program []byte, cycles int, log logrus.FieldLogger) (string, error) {
	b1, err := NewBench(cfg1, program, log)
	if err != nil {
		return "", err
	}
	b2, err := NewBench(cfg2, program, log)
	if err != nil {
		return "", err
	}
	names := append(shared(b1.seq.Outputs(), b2.seq.Outputs()), "acc")

	cmp := func() string {
		s1, t1 := b1.State()
		s2, t2 := b2.State()
		if s1 != s2 || t1 != t2 {
			return fmt.Sprintf("cycle %d: state %s/%d != %s/%d", b1.cycles, s1, t1, s2, t2)
		}
		for _, n := range names {
			v1, v2 := b1.Get(n), b2.Get(n)
			if !v1.Equal(v2) {
				return fmt.Sprintf("cycle %d (%s/%d): %s = %v != %v", b1.cycles, s1, t1, n, v1, v2)
			}
		}
		return ""
	}

	if err = b1.Reset(); err != nil {
		return "", err
	}
	if err = b2.Reset(); err != nil {
		return "", err
	}
	if d := cmp(); d != "" {
		return d, nil
	}
	for i := 0; i < cycles; i++ {
		if err = b1.TickTock(); err != nil {
			return "", err
		}
		if err = b2.TickTock(); err != nil {
			return "", err
		}
		if d := cmp(); d != "" {
			return d, nil
		}
	}
	return "", nil
}

func programString(p []byte) string {
	var b strings.Builder
	for i, v := range p {
		if i > 0 {
			b.WriteRune(',')
		}
		fmt.Fprintf(&b, "%02x", v)
	}
	return b.String()
}

// CompareVariants checks that two sequencer builds produce the same control
// outputs given the same programs.
//
// Programs are random sequences of the given opcodes. Opcodes must be decoded
// the same way by both builds.
func CompareVariants(t testing.TB, cfg1, cfg2 *seqlib.Config, opcodes []byte, programs int) {
	t.Helper()

	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	start := time.Now()
	var cycles int
	for i := 0; i < programs; i++ {
		p := make([]byte, 4+rnd.Intn(12))
		for j := range p {
			p[j] = opcodes[rnd.Intn(len(opcodes))]
		}
		n := 4 * len(p)
		d, err := Diff(cfg1, cfg2, p, n, log)
		if err != nil {
			t.Fatalf("program %s: %+v", programString(p), err)
		}
		if d != "" {
			t.Fatalf("%s vs. %s, seed %d, program %s:\n%s", cfg1.Name, cfg2.Name, seed, programString(p), d)
		}
		cycles += n
	}
	elapsed := time.Since(start)
	t.Logf("%d programs, %d clock cycles in %v => %.2f Hz", programs, cycles, elapsed, float64(cycles)/(float64(elapsed)/float64(time.Second)))
}
