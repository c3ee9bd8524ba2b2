// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

import "fmt"

// Offset is a non-negative byte offset with a distinguished UNKNOWN top
// element. Arithmetic saturates to UNKNOWN: once either operand is
// UNKNOWN, or the result would overflow, the result is UNKNOWN.
type Offset struct {
	known bool
	val   uint64
}

// Unknown is the distinguished top element of the Offset lattice.
var Unknown = Offset{known: false}

// Off builds a known, finite Offset.
func Off(v uint64) Offset {
	return Offset{known: true, val: v}
}

// IsUnknown reports whether o is the UNKNOWN top element.
func (o Offset) IsUnknown() bool {
	return !o.known
}

// Value returns the finite value of o and true, or (0, false) if o is
// UNKNOWN.
func (o Offset) Value() (uint64, bool) {
	return o.val, o.known
}

// Add returns o+x, saturating to Unknown on overflow or if either
// operand is Unknown.
func (o Offset) Add(x Offset) Offset {
	if o.IsUnknown() || x.IsUnknown() {
		return Unknown
	}
	sum := o.val + x.val
	if sum < o.val { // overflow
		return Unknown
	}
	return Off(sum)
}

// Less orders finite offsets by value and sorts Unknown after every
// finite value, giving Offset a total order suitable for use as a map
// or interval key.
func (o Offset) Less(other Offset) bool {
	if o.known && other.known {
		return o.val < other.val
	}
	if o.known && !other.known {
		return true
	}
	return false
}

// Equal reports structural equality.
func (o Offset) Equal(other Offset) bool {
	return o.known == other.known && (!o.known || o.val == other.val)
}

// InRange reports whether o falls in [lo, hi). Per spec, the match is
// conservative: it is true if o is finite and lo <= o < hi, or if any
// of o, lo, hi is UNKNOWN.
func (o Offset) InRange(lo, hi Offset) bool {
	if o.IsUnknown() || lo.IsUnknown() || hi.IsUnknown() {
		return true
	}
	return lo.val <= o.val && o.val < hi.val
}

func (o Offset) String() string {
	if o.IsUnknown() {
		return "UNKNOWN"
	}
	return fmt.Sprintf("%d", o.val)
}
