// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var (
	signalIDType = reflect.TypeOf(SignalID(0))
	driverType   = reflect.TypeOf((*Driver)(nil))
)

// Bind resolves the signals referenced by the fields of the struct pointed to
// by v.
//
// Fields are identified by the `seq` field tag. By default, the signal name
// is the field name in lowercase. A specific name can be forced by adding it
// in the tag: `seq:"name"`. Fields of type SignalID receive the signal id.
// Fields of type *Driver receive a new direct driver, or a port-routed driver
// if the tag has the "port" option: `seq:"name,port"` or `seq:",port"`.
//
// Lookup failures are recorded in s. Bind only returns an error if v is not a
// pointer to a struct.
func Bind(s *Scope, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("bind: unsupported type %T", v)
	}
	e := rv.Elem()
	typ := e.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("seq")
		if !ok || tag == "-" {
			continue
		}
		name := strings.ToLower(f.Name)
		var port bool
		tv := strings.Split(tag, ",")
		if tv[0] != "" {
			name = tv[0]
		}
		for _, opt := range tv[1:] {
			switch opt {
			case "port":
				port = true
			default:
				s.Errorf("bind: unsupported option %q for field %q in %q", opt, f.Name, typ.Name())
			}
		}
		fv := e.Field(i)
		if !fv.CanSet() {
			s.Errorf("bind: field %q in %q is not exported", f.Name, typ.Name())
			continue
		}
		switch f.Type {
		case signalIDType:
			if port {
				s.Errorf("bind: port option on signal id field %q in %q", f.Name, typ.Name())
			}
			fv.SetInt(int64(s.Signal(name)))
		case driverType:
			var d *Driver
			if port {
				d = s.Port(name)
			} else {
				d = s.Driver(name)
			}
			fv.Set(reflect.ValueOf(d))
		default:
			s.Errorf("bind: unsupported type %q for field %q in %q", f.Type, f.Name, typ.Name())
		}
	}
	return nil
}
