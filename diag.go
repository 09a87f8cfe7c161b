// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package seqsim

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Structural errors. They are returned (possibly wrapped) while building a
// process and prevent it from running. Use errors.Cause to test for them.
var (
	ErrNoSignal        = errors.New("no such signal")
	ErrMultipleDrivers = errors.New("signal already has a driver")
	ErrNoDriver        = errors.New("nil driver")
	ErrNoConstant      = errors.New("no constant at offset")
	ErrIncomplete      = errors.New("incomplete decode tree")
	ErrDeltaOverflow   = errors.New("delta cycle limit exceeded")
)

// Pos is a source coordinate attached to decode nodes and actions. It is
// only used for tracing and diagnostics.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 {
		return "-"
	}
	return p.File + ":" + strconv.Itoa(p.Line)
}

// A WidthError reports a copy or compare between values of different widths.
type WidthError struct {
	Signal string
	Want   int // width of the target
	Got    int // width of the value
}

func (e *WidthError) Error() string {
	return "size mismatch on " + e.Signal + ": expected " + strconv.Itoa(e.Want) + " elements, got " + strconv.Itoa(e.Got)
}

// A StepError aborts a single process evaluation. Driver updates applied
// before the error are kept.
type StepError struct {
	Process string
	Pos     Pos
	Err     error
}

func (e *StepError) Error() string {
	return e.Process + ": " + e.Pos.String() + ": " + e.Err.Error()
}

// Cause returns the underlying error.
func (e *StepError) Cause() error { return e.Err }

// Unwrap is like Cause.
func (e *StepError) Unwrap() error { return e.Err }

// A Diagnostic is a non-fatal problem found while evaluating a process.
type Diagnostic struct {
	Process string
	Pos     Pos
	Err     error
}

// A Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(d Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// LogReporter reports diagnostics as logrus warnings.
type LogReporter struct {
	Log logrus.FieldLogger
}

// Report implements Reporter.
func (r *LogReporter) Report(d Diagnostic) {
	fields := logrus.Fields{
		"process": d.Process,
		"file":    d.Pos.File,
		"line":    d.Pos.Line,
	}
	if we, ok := errors.Cause(d.Err).(*WidthError); ok {
		fields["signal"] = we.Signal
	}
	if _, ok := d.Err.(*StepError); ok {
		r.Log.WithFields(fields).Error(d.Err.Error())
		return
	}
	r.Log.WithFields(fields).Warn(d.Err.Error())
}
