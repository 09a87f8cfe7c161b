// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"strings"

	"github.com/pkg/errors"
)

// Logic is a single element of a signal value.
//
// For logic vectors, it holds an IEEE 1164 std_ulogic code. For enumerated
// signals, it holds the ordinal of the current literal. In both cases values
// are compared as raw codes, never as booleans.
type Logic uint8

// std_ulogic codes.
const (
	U        Logic = iota // uninitialized
	X                     // forcing unknown
	Lo                    // forcing 0
	Hi                    // forcing 1
	Z                     // high impedance
	W                     // weak unknown
	L                     // weak 0
	H                     // weak 1
	DontCare              // don't care
)

const logicChars = "UX01ZWLH-"

// String returns the std_ulogic character for l. Codes outside of the
// std_ulogic range are printed as "?".
func (l Logic) String() string {
	if int(l) < len(logicChars) {
		return logicChars[l : l+1]
	}
	return "?"
}

// x01 maps l to X, Lo or Hi.
func (l Logic) x01() Logic {
	switch l {
	case Lo, L:
		return Lo
	case Hi, H:
		return Hi
	}
	return X
}

// Vector is a fixed width logic value. Element 0 is the leftmost (most
// significant) element.
type Vector []Logic

// ParseVector parses a string of std_ulogic characters like "01ZX".
// Underscores are ignored.
func ParseVector(s string) (Vector, error) {
	v := make(Vector, 0, len(s))
	for i, r := range s {
		if r == '_' {
			continue
		}
		n := strings.IndexRune(logicChars, r)
		if n < 0 {
			return nil, errors.Errorf("in %q at pos %d: invalid logic value %q", s, i+1, r)
		}
		v = append(v, Logic(n))
	}
	return v, nil
}

// MustVector is like ParseVector but panics on error.
func MustVector(s string) Vector {
	v, err := ParseVector(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Fill returns a vector of the given width with all elements set to l.
func Fill(width int, l Logic) Vector {
	v := make(Vector, width)
	for i := range v {
		v[i] = l
	}
	return v
}

// FromUint returns the width bits wide binary representation of u.
// Higher bits of u are dropped.
func FromUint(width int, u uint64) Vector {
	v := make(Vector, width)
	for i := range v {
		if u&(1<<uint(width-1-i)) != 0 {
			v[i] = Hi
		} else {
			v[i] = Lo
		}
	}
	return v
}

// Uint returns the unsigned value of v. The second return value is false if v
// contains elements other than 0, 1, L or H, or if v is wider than 64 bits.
func (v Vector) Uint() (uint64, bool) {
	if len(v) > 64 {
		return 0, false
	}
	var u uint64
	for _, l := range v {
		u <<= 1
		switch l.x01() {
		case Hi:
			u |= 1
		case Lo:
		default:
			return 0, false
		}
	}
	return u, true
}

// Equal reports whether v and w hold the exact same raw pattern.
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) String() string {
	var b strings.Builder
	b.Grow(len(v))
	for _, l := range v {
		b.WriteString(l.String())
	}
	return b.String()
}

// AddLogic returns the unsigned sum v + b. The result has the width of v and
// the carry out is dropped. If any element of v or b is neither a strong nor a
// weak 0 or 1, the result is all X.
func AddLogic(v Vector, b Logic) Vector {
	r := make(Vector, len(v))
	c := b.x01()
	if c == X {
		return Fill(len(v), X)
	}
	carry := c == Hi
	for i := len(v) - 1; i >= 0; i-- {
		x := v[i].x01()
		if x == X {
			return Fill(len(v), X)
		}
		bit := x == Hi
		switch {
		case bit && carry:
			r[i] = Lo
		case bit || carry:
			r[i] = Hi
			carry = false
		default:
			r[i] = Lo
		}
	}
	return r
}
