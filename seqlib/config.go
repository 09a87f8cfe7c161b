// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqlib

import (
	"encoding/json"
	"os"

	"github.com/db47h/seqsim"
	"github.com/pkg/errors"
)

// Config describes one build of the sequencer: its signals, its constants and
// the micro-steps run for each control state and opcode.
//
// Control-state and micro-step transitions are ordinary ops that assign the
// "state" and "step" signals. A sequencer always has the following signals:
// "clk" and "reset" (inputs), "state" and "step" (enumerations) and "ir" (the
// opcode register, declared in Signals).
type Config struct {
	// Name of the build.
	Name string `json:"name"`
	// Source file name reported in trace positions.
	Source string `json:"source"`

	// Declaration lists, see seqsim.ParseDecls.
	Inputs  string `json:"inputs"`
	Ports   string `json:"ports"`
	Signals string `json:"signals"`

	// Enumeration literal lists, see seqsim.ParseLiterals.
	States string `json:"states"`
	Steps  string `json:"steps"`

	// FetchState and ExecState are the literals of States that select the
	// Fetch micro-steps and the opcode decoder.
	FetchState string `json:"fetch_state"`
	ExecState  string `json:"exec_state"`

	Constants []Constant `json:"constants"`

	// Source lines of the process statement, the state case statement, the
	// fetch step case statement and the opcode case statement.
	ProcessLine int `json:"process_line"`
	StateLine   int `json:"state_line"`
	FetchLine   int `json:"fetch_line"`
	DecodeLine  int `json:"decode_line"`

	// Reset is applied while reset is '1'.
	Reset Block `json:"reset"`
	// Fetch lists the fetch micro-steps, indexed by step ordinal.
	Fetch []Block `json:"fetch"`
	// Opcodes are matched in order against ir.
	Opcodes []Opcode `json:"opcodes"`
	// Default is applied for unmatched opcodes.
	Default Block `json:"default"`
}

// A Constant is an entry of the sequencer's constant table.
type Constant struct {
	Offset int    `json:"offset"`
	Name   string `json:"name,omitempty"`
	Bits   string `json:"bits"`
}

// An Opcode associates the constant pattern at offset Pattern with a list of
// micro-steps indexed by step ordinal.
type Opcode struct {
	Name    string  `json:"name"`
	Line    int     `json:"line"`
	Pattern int     `json:"pattern"`
	Steps   []Block `json:"steps"`
}

// A Block is the list of ops run for one micro-step. If Continue is set, the
// process asks to be run again in the next delta cycle.
type Block struct {
	Line     int  `json:"line"`
	Ops      []Op `json:"ops"`
	Continue bool `json:"continue,omitempty"`
}

// An Op is a single driver update. Exactly one of Value, Src or Const must be
// set.
//
// Value is a logic literal like "0101" or, for enumerated signals, a literal
// name. Src names the signal to copy. If Incr is set, the source value plus
// Incr (a single logic element like "1") is assigned. Const is the offset of
// a constant in the constant table.
type Op struct {
	Line  int    `json:"line"`
	Dst   string `json:"dst"`
	Value string `json:"value,omitempty"`
	Src   string `json:"src,omitempty"`
	Incr  string `json:"incr,omitempty"`
	Const *int   `json:"const,omitempty"`
}

// Validate checks the syntax of c. Name resolution is done by New.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("name must not be empty")
	}
	for _, d := range []struct{ name, spec string }{
		{"inputs", c.Inputs},
		{"ports", c.Ports},
		{"signals", c.Signals},
	} {
		if _, err := seqsim.ParseDecls(d.spec); err != nil {
			return errors.Wrap(err, d.name)
		}
	}
	states, err := seqsim.ParseLiterals(c.States)
	if err != nil {
		return errors.Wrap(err, "states")
	}
	if !contains(states, c.FetchState) {
		return errors.Errorf("fetch_state %q is not a state", c.FetchState)
	}
	if !contains(states, c.ExecState) {
		return errors.Errorf("exec_state %q is not a state", c.ExecState)
	}
	if c.FetchState == c.ExecState {
		return errors.New("fetch_state and exec_state must differ")
	}
	steps, err := seqsim.ParseLiterals(c.Steps)
	if err != nil {
		return errors.Wrap(err, "steps")
	}
	if len(steps) == 0 {
		return errors.New("steps must not be empty")
	}
	if len(c.Fetch) > len(steps) {
		return errors.Errorf("fetch: %d micro-steps for %d steps", len(c.Fetch), len(steps))
	}
	offsets := make(map[int]bool, len(c.Constants))
	for _, k := range c.Constants {
		if offsets[k.Offset] {
			return errors.Errorf("duplicate constant at offset %d", k.Offset)
		}
		offsets[k.Offset] = true
		if _, err := seqsim.ParseVector(k.Bits); err != nil {
			return errors.Wrapf(err, "constant %d", k.Offset)
		}
	}
	for _, o := range c.Opcodes {
		if o.Name == "" {
			return errors.New("opcode with no name")
		}
		if !offsets[o.Pattern] {
			return errors.Errorf("opcode %s: no constant at offset %d", o.Name, o.Pattern)
		}
		if len(o.Steps) > len(steps) {
			return errors.Errorf("opcode %s: %d micro-steps for %d steps", o.Name, len(o.Steps), len(steps))
		}
	}
	return nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// LoadConfig loads a Config from a JSON file and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read sequencer config file")
	}
	c := new(Config)
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse sequencer config")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

// SaveConfig writes c to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize sequencer config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write sequencer config file")
	}
	return nil
}

// ConstTable builds the constant table of c.
func (c *Config) ConstTable() (*seqsim.ConstTable, error) {
	t := new(seqsim.ConstTable)
	for _, k := range c.Constants {
		v, err := seqsim.ParseVector(k.Bits)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %d", k.Offset)
		}
		if t, err = t.Define(k.Offset, k.Name, v); err != nil {
			return nil, err
		}
	}
	return t, nil
}
