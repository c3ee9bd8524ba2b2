// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

import "fmt"

// DefSite identifies a byte range [Offset, Offset+Length) of an
// abstract memory object, Target. Target is never nil; it may be the
// sentinel UnknownMemory, standing for "some unspecified object".
// Either of Offset or Length may be Unknown, in which case the range
// means "somewhere in Target".
type DefSite struct {
	Target *Node
	Offset Offset
	Length Offset
}

// NewDefSite builds a DefSite, panicking if target is nil: every
// DefSite must name an object, even if that object is UnknownMemory.
func NewDefSite(target *Node, offset, length Offset) DefSite {
	if target == nil {
		panic("rdgraph: DefSite with nil target")
	}
	return DefSite{Target: target, Offset: offset, Length: length}
}

// End returns ds.Offset + ds.Length, the exclusive end of the range.
func (ds DefSite) End() Offset {
	return ds.Offset.Add(ds.Length)
}

// HasUnknownBounds reports whether either endpoint of ds is Unknown,
// i.e. whether ds describes "somewhere in Target" rather than a
// precise byte range.
func (ds DefSite) HasUnknownBounds() bool {
	return ds.Offset.IsUnknown() || ds.Length.IsUnknown()
}

// Overlaps reports whether ds and other name byte ranges of the same
// target that could intersect. Unknown bounds always overlap, per the
// conservative semantics of Offset.InRange.
func (ds DefSite) Overlaps(other DefSite) bool {
	if ds.Target != other.Target {
		return false
	}
	if ds.HasUnknownBounds() || other.HasUnknownBounds() {
		return true
	}
	return ds.Offset.Less(other.End()) && other.Offset.Less(ds.End())
}

// Covers reports whether ds, a strong write, fully contains other's
// range within the same target. An unknown-bounded ds never provably
// covers a finite range (it might be narrower in reality); it covers
// only another unknown-bounded range.
func (ds DefSite) Covers(other DefSite) bool {
	if ds.Target != other.Target {
		return false
	}
	if ds.HasUnknownBounds() {
		return other.HasUnknownBounds()
	}
	if other.HasUnknownBounds() {
		return false
	}
	dsEnd, otherEnd := ds.End(), other.End()
	startsInOrBefore := ds.Offset.Less(other.Offset) || ds.Offset.Equal(other.Offset)
	endsAtOrAfter := otherEnd.Less(dsEnd) || otherEnd.Equal(dsEnd)
	return startsInOrBefore && endsAtOrAfter
}

// Less gives DefSite a total order, lexicographic on
// (target id, offset, length), with Unknown sorting after any finite
// value — required so RDMap's interval structure can use DefSite-like
// bounds as ordered keys.
func (ds DefSite) Less(other DefSite) bool {
	if ds.Target.id != other.Target.id {
		return ds.Target.id < other.Target.id
	}
	if !ds.Offset.Equal(other.Offset) {
		return ds.Offset.Less(other.Offset)
	}
	return ds.Length.Less(other.Length)
}

// Equal reports structural equality.
func (ds DefSite) Equal(other DefSite) bool {
	return ds.Target == other.Target &&
		ds.Offset.Equal(other.Offset) &&
		ds.Length.Equal(other.Length)
}

func (ds DefSite) String() string {
	return fmt.Sprintf("(%s, off=%s, len=%s)", ds.Target.Name(), ds.Offset, ds.Length)
}
