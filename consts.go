// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"github.com/pkg/errors"
)

// Constants gives access to fixed-width constant patterns addressed by a
// stable integer offset.
type Constants interface {
	Constant(offset int) (Vector, error)
}

// ConstTable is a read-only Constants implementation. The zero value is an
// empty table.
type ConstTable struct {
	m     map[int]Vector
	names map[int]string
}

// NewConstTable returns a table holding the given constants.
func NewConstTable(cs map[int]Vector) *ConstTable {
	t := &ConstTable{m: make(map[int]Vector, len(cs)), names: make(map[int]string)}
	for off, v := range cs {
		t.m[off] = v.Clone()
	}
	return t
}

// Define returns a copy of t with an additional named constant. It is only
// meant to be used while building a table.
func (t *ConstTable) Define(offset int, name string, v Vector) (*ConstTable, error) {
	if _, ok := t.m[offset]; ok {
		return nil, errors.Errorf("duplicate constant at offset %d", offset)
	}
	n := &ConstTable{m: make(map[int]Vector, len(t.m)+1), names: make(map[int]string, len(t.names)+1)}
	for k, v := range t.m {
		n.m[k] = v
	}
	for k, v := range t.names {
		n.names[k] = v
	}
	n.m[offset] = v.Clone()
	if name != "" {
		n.names[offset] = name
	}
	return n, nil
}

// Constant implements Constants. The returned vector must not be modified.
func (t *ConstTable) Constant(offset int) (Vector, error) {
	v, ok := t.m[offset]
	if !ok {
		return nil, errors.Wrapf(ErrNoConstant, "%d", offset)
	}
	return v, nil
}

// Name returns the name of the constant at offset, if any.
func (t *ConstTable) Name(offset int) string { return t.names[offset] }

// Len returns the number of constants in t.
func (t *ConstTable) Len() int { return len(t.m) }
