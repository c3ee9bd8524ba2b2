// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

// Options configures precision-cap and call-handling policy shared by
// Graph's block summaries and the reaching package's driver. It is the
// "configuration object" of spec §6.
type Options struct {
	// MaxSetSize bounds writer-set cardinality before collapse to
	// {UnknownMemory}; must be >= 1.
	MaxSetSize uint

	// StrongUpdateUnknownSize, when true, treats any past write to
	// UnknownMemory as potentially reaching every other target too —
	// RDMap.Get unions UnknownMemory's unknown bucket into every query
	// (spec §6 default: false).
	StrongUpdateUnknownSize bool

	// OpaqueCallKillsAll, when true (the default), treats a CALL with
	// no known callee subgraph as writing UnknownMemory at
	// [0, UNKNOWN).
	OpaqueCallKillsAll bool
}

// DefaultOptions returns the spec §6 default configuration.
func DefaultOptions() Options {
	return Options{
		MaxSetSize:              defaultMaxSetSize,
		StrongUpdateUnknownSize: false,
		OpaqueCallKillsAll:      true,
	}
}

// defaultMaxSetSize is this implementation's choice for "default
// implementation-defined" in spec §6: generous enough that small,
// typical functions never hit the cap, small enough to bound memory on
// pathological PHI fan-in.
const defaultMaxSetSize = 32

// Validate checks the precondition spec §7 requires rejected at
// construction time.
func (o Options) Validate() error {
	if o.MaxSetSize == 0 {
		return errZeroMaxSetSize
	}
	return nil
}
