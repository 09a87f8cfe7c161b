/*
Package seqsim simulates hardware control sequencers in the way an
event-driven HDL simulator runs a compiled process.

A simulation is made of a signal Store, a DriverTable with exactly one Driver
per driven signal, and one or more processes registered with a Kernel. A
process evaluates a decode tree: Branch nodes test a signal level or a rising
edge, Switch nodes dispatch on the ordinal of an enumerated signal (the
control state, the micro-step) and Match nodes compare a signal against
constant patterns (opcodes). Leaves issue driver updates in order.

Drivers support two update paths:

	d.Apply(v)    // visible to every later read, even in the same evaluation
	d.Schedule(v) // visible after the next delta barrier (DriverTable.Commit)

Processes run to completion and are re-evaluated by the kernel whenever a
signal in their sensitivity list changes. Clock implements a clock driven by
an akita event engine.

The seqlib sub-package provides a configurable 8051-style instruction
sequencer built on top of this package, and seqtest provides a test bench.
*/
package seqsim
