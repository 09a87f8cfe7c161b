// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl

import (
	"github.com/pkg/errors"
)

// Decl is a signal declaration: a name and a width. Width is 0 if the
// declaration has no width specifier.
type Decl struct {
	Name  string
	Width int
	Pos   int
}

// ParseDecls parses a comma separated list of declarations like
// "clk, reset, ir[8]".
func ParseDecls(input string) ([]Decl, error) {
	var out []Decl
	l := NewLexer(input)
	i := l.Lex()
	if i.Type == EOF {
		return nil, nil
	}
	for {
		if i.Type != Ident {
			return nil, parseError(input, i, "expected signal name")
		}
		d := Decl{Name: i.Value.(string), Pos: i.Pos}
		i = l.Lex()
		if i.Type == BracketOpen {
			i = l.Lex()
			if i.Type != Int {
				return nil, parseError(input, i, "missing width")
			}
			d.Width = i.Value.(int)
			if d.Width == 0 {
				return nil, parseError(input, i, "zero width")
			}
			i = l.Lex()
			if i.Type != BracketClose {
				return nil, parseError(input, i, "missing close bracket")
			}
			i = l.Lex()
		}
		out = append(out, d)
		switch i.Type {
		case EOF:
			return out, nil
		case Comma:
			i = l.Lex()
		default:
			return nil, parseError(input, i, "expected comma or end of input")
		}
	}
}

// ParseIdents parses a comma separated list of identifiers.
func ParseIdents(input string) ([]string, error) {
	ds, err := ParseDecls(input)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ds))
	for n, d := range ds {
		if d.Width != 0 {
			return nil, errors.Errorf("in %q at pos %d: unexpected width specifier", input, d.Pos+1)
		}
		out[n] = d.Name
	}
	return out, nil
}

func parseError(input string, i Item, msg string) error {
	return errors.Errorf("in %q at pos %d: %s, got %s", input, i.Pos+1, msg, i)
}
