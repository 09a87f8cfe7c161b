// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"github.com/db47h/seqsim/internal/hdl"
	"github.com/pkg/errors"
)

// Decl is a logic signal declaration.
type Decl struct {
	Name  string
	Width int
}

// ParseDecls parses a declaration list like "clk, reset, ir[8], pc[16]".
// Signals without a width specifier are 1 bit wide.
func ParseDecls(spec string) ([]Decl, error) {
	ds, err := hdl.ParseDecls(spec)
	if err != nil {
		return nil, err
	}
	out := make([]Decl, len(ds))
	for i, d := range ds {
		w := d.Width
		if w == 0 {
			w = 1
		}
		out[i] = Decl{Name: d.Name, Width: w}
	}
	return out, nil
}

// ParseLiterals parses a list of enumeration literals like
// "fetch, execute, halt".
func ParseLiterals(spec string) ([]string, error) {
	return hdl.ParseIdents(spec)
}

// DeclareSpec declares all the signals in spec, with all elements set to
// init, and returns their ids.
func (s *Store) DeclareSpec(spec string, init Logic) ([]SignalID, error) {
	ds, err := ParseDecls(spec)
	if err != nil {
		return nil, err
	}
	ids := make([]SignalID, 0, len(ds))
	for _, d := range ds {
		id, err := s.Declare(d.Name, d.Width, init)
		if err != nil {
			return nil, errors.Wrap(err, "declare")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
