// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command seqsim runs a sequencer build on a program image and logs the
// control lines on every clock cycle.
//
// Usage:
//
//	seqsim [flags]
//
// Example:
//
//	# MOV A,#42h; INC A; NOP; CLR A
//	seqsim -variant tb1 -program 74,42,04,00,e4 -cycles 40 -v
//
//	# write the i8051 build to a JSON file, edit it and run it
//	seqsim -variant i8051 -save i8051.json
//	seqsim -config i8051.json -program 00,e4
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/db47h/seqsim"
	"github.com/db47h/seqsim/seqlib"
	"github.com/db47h/seqsim/seqtest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func parseProgram(s string) ([]byte, error) {
	var p []byte
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(f, "0x"), 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "program byte %q", f)
		}
		p = append(p, byte(v))
	}
	return p, nil
}

func loadConfig(variant, path string) (*seqlib.Config, error) {
	if path != "" {
		return seqlib.LoadConfig(path)
	}
	fn, ok := seqlib.Variants()[variant]
	if !ok {
		names := make([]string, 0, len(seqlib.Variants()))
		for n := range seqlib.Variants() {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, errors.Errorf("unknown variant %q, expected one of %s", variant, strings.Join(names, ", "))
	}
	return fn(), nil
}

func run(l logrus.FieldLogger, cfg *seqlib.Config, program []byte, cycles int, trace bool) error {
	b, err := seqtest.NewBench(cfg, program, l)
	if err != nil {
		return err
	}
	log := b.Kernel().Log()
	if trace {
		b.Kernel().SetTracer(func(proc string, pos seqsim.Pos) {
			log.WithFields(logrus.Fields{"process": proc, "line": pos.Line}).Trace("step")
		})
	}
	if err = b.Reset(); err != nil {
		return err
	}

	outs := append(append([]string(nil), b.Sequencer().Outputs()...), "acc")
	last := make(map[string]string, len(outs))
	for _, n := range outs {
		last[n] = b.Get(n).String()
	}
	b.OnCycle = func(b *seqtest.Bench) error {
		state, step := b.State()
		f := logrus.Fields{"cycle": b.Cycles(), "state": state, "step": step}
		for _, n := range outs {
			v := b.Get(n).String()
			if v != last[n] {
				f[n] = v
				last[n] = v
			}
		}
		log.WithFields(f).Debug("clock")
		return nil
	}
	if err = b.Run(cycles); err != nil {
		return err
	}

	state, step := b.State()
	f := logrus.Fields{"state": state, "step": step, "deltas": b.Kernel().Deltas(), "time": b.Clock().Now()}
	for _, n := range []string{"pc", "ir", "acc"} {
		f[n] = b.Get(n).String()
	}
	log.WithFields(f).Infof("%s: %d cycles", cfg.Name, cycles)
	return nil
}

func main() {
	variant := flag.String("variant", "tb1", "sequencer build: tb1 or i8051")
	config := flag.String("config", "", "path to a sequencer build JSON file (overrides -variant)")
	save := flag.String("save", "", "write the selected build to a JSON file and exit")
	program := flag.String("program", "00", "comma separated program bytes in hex")
	cycles := flag.Int("cycles", 20, "number of clock cycles to run")
	verbose := flag.Bool("v", false, "log control lines on every clock cycle")
	trace := flag.Bool("trace", false, "log every decode step")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case *trace:
		log.SetLevel(logrus.TraceLevel)
	case *verbose:
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := loadConfig(*variant, *config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *save != "" {
		if err = cfg.SaveConfig(*save); err != nil {
			log.Fatal(err)
		}
		return
	}
	p, err := parseProgram(*program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err = run(log, cfg, p, *cycles, *trace); err != nil {
		log.Fatalf("%+v", err)
	}
}
