// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// File defines RDMap, the reaching-definitions map: for each target
// object, an ordered, disjoint partition of byte intervals to the set
// of nodes that may have written them last, plus a per-target
// "unknown interval" bucket for ranges with any UNKNOWN endpoint.
//
// Writer sets are represented the way the dataflow analyses this
// package is grounded on represent their GEN/KILL/IN/OUT sets: as
// github.com/bits-and-blooms/bitset values, indexed here by Node.id
// rather than by block position.

// ivEntry is one entry of a target's interval partition: the
// half-open byte range [lo, hi) and the set of nodes that may have
// last written it.
type ivEntry struct {
	lo, hi  uint64
	writers *bitset.BitSet
}

func (e *ivEntry) clone() *ivEntry {
	return &ivEntry{lo: e.lo, hi: e.hi, writers: e.writers.Clone()}
}

// RDMap is the DefinitionsMap (RDMap) of spec §4.C: a map from target
// to an interval-keyed collection of writer-node sets, with bounded
// widening via maxSetSize.
type RDMap struct {
	g         *Graph
	opts      Options
	intervals map[*Node][]*ivEntry
	unknown   map[*Node]*bitset.BitSet
}

// NewRDMap creates an empty RDMap bound to g and opts, collapsing any
// writer set whose cardinality would exceed opts.MaxSetSize to
// {UnknownMemory}. opts.MaxSetSize must be >= 1.
func NewRDMap(g *Graph, opts Options) *RDMap {
	if opts.MaxSetSize < 1 {
		panic("rdgraph: NewRDMap requires opts.MaxSetSize >= 1")
	}
	return &RDMap{
		g:         g,
		opts:      opts,
		intervals: make(map[*Node][]*ivEntry),
		unknown:   make(map[*Node]*bitset.BitSet),
	}
}

// Clone returns a deep copy of m.
func (m *RDMap) Clone() *RDMap {
	out := NewRDMap(m.g, m.opts)
	for t, ivs := range m.intervals {
		cp := make([]*ivEntry, len(ivs))
		for i, iv := range ivs {
			cp[i] = iv.clone()
		}
		out.intervals[t] = cp
	}
	for t, ub := range m.unknown {
		out.unknown[t] = ub.Clone()
	}
	return out
}

func (m *RDMap) unknownBucket(target *Node) *bitset.BitSet {
	ub, ok := m.unknown[target]
	if !ok {
		ub = new(bitset.BitSet)
		m.unknown[target] = ub
	}
	return ub
}

func singleton(writer *Node) *bitset.BitSet {
	b := new(bitset.BitSet)
	b.Set(writer.id)
	return b
}

// collapseIfOversize enforces the precision cap on a single writer
// set, returning the (possibly replaced) bitset and whether it
// collapsed. A collapsed interval is not dropped: its writers are
// replaced by {UnknownMemory} and it is also folded into the unknown
// bucket, so a later touch of the same byte range sees an existing
// {UnknownMemory} entry to union against rather than a clean slate —
// otherwise a handful of writers below the cap could creep back in
// right after a collapse, silently undoing it.
func (m *RDMap) collapseIfOversize(writers *bitset.BitSet) (out *bitset.BitSet, collapse bool) {
	if writers.Count() <= m.opts.MaxSetSize {
		return writers, false
	}
	return singleton(unknownMemory), true
}

// Update performs a strong update at ds: prior writers of the exact
// range (or, for an unknown-bounded ds, of the whole target) are
// killed and replaced by {writer}.
func (m *RDMap) Update(ds DefSite, writer *Node) {
	if ds.HasUnknownBounds() {
		delete(m.intervals, ds.Target)
		m.unknown[ds.Target] = singleton(writer)
		return
	}
	lo, _ := ds.Offset.Value()
	length, _ := ds.Length.Value()
	m.rebuild(ds.Target, lo, lo+length, writer, nil, true)
}

// Add performs a weak update at ds: writer is unioned into every
// writer set whose range overlaps ds.
func (m *RDMap) Add(ds DefSite, writer *Node) {
	if ds.HasUnknownBounds() {
		m.addUnknown(ds.Target, writer)
		return
	}
	lo, _ := ds.Offset.Value()
	length, _ := ds.Length.Value()
	m.rebuild(ds.Target, lo, lo+length, writer, nil, false)
}

// addUnknown implements Add for an unknown-bounded ds: writer is
// unioned into the target's unknown bucket and into every existing
// interval for that target, per spec §4.C.
func (m *RDMap) addUnknown(target *Node, writer *Node) {
	m.unknownBucket(target).Set(writer.id)

	var kept []*ivEntry
	for _, iv := range m.intervals[target] {
		iv.writers.Set(writer.id)
		if w, collapse := m.collapseIfOversize(iv.writers); collapse {
			m.unknownBucket(target).InPlaceUnion(w)
			iv.writers = w
		}
		kept = append(kept, iv)
	}
	if len(kept) == 0 {
		delete(m.intervals, target)
	} else {
		m.intervals[target] = kept
	}
}

type byLo []*ivEntry

func (s byLo) Len() int           { return len(s) }
func (s byLo) Less(i, j int) bool { return s[i].lo < s[j].lo }
func (s byLo) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// rebuild is the shared engine behind Update and Add for a
// finite-bounded range [lo, hi) of target: it splits existing
// intervals at the range's boundaries, transforms the overlapping
// sub-ranges (replace-with-writer if strong, union-with-writer if
// weak), fills any sub-range of [lo, hi) not already covered by an
// interval, and enforces the precision cap on every touched
// sub-range. addSet, if non-nil, unions a whole writer set instead of
// a single node (used by Merge); writer is used otherwise.
func (m *RDMap) rebuild(target *Node, lo, hi uint64, writer *Node, addSet *bitset.BitSet, strong bool) {
	old := m.intervals[target]
	var kept []*ivEntry
	var coveredHi uint64 = lo // high-water mark of [lo,hi) already filled

	for _, iv := range old {
		if iv.hi <= lo || iv.lo >= hi {
			kept = append(kept, iv)
			continue
		}
		if iv.lo < lo {
			kept = append(kept, &ivEntry{lo: iv.lo, hi: lo, writers: iv.writers.Clone()})
		}
		ovLo, ovHi := maxU64(iv.lo, lo), minU64(iv.hi, hi)
		if coveredHi < ovLo {
			// gap between coveredHi and ovLo within [lo,hi)
			kept = appendNew(kept, m, target, coveredHi, ovLo, writer, addSet)
		}
		var writers *bitset.BitSet
		if strong {
			if addSet != nil {
				writers = addSet.Clone()
			} else {
				writers = singleton(writer)
			}
		} else {
			writers = iv.writers.Clone()
			if addSet != nil {
				writers.InPlaceUnion(addSet)
			} else {
				writers.Set(writer.id)
			}
		}
		if w, collapse := m.collapseIfOversize(writers); collapse {
			m.unknownBucket(target).InPlaceUnion(w)
			writers = w
		}
		kept = append(kept, &ivEntry{lo: ovLo, hi: ovHi, writers: writers})
		coveredHi = ovHi
		if iv.hi > hi {
			kept = append(kept, &ivEntry{lo: hi, hi: iv.hi, writers: iv.writers.Clone()})
		}
	}
	if coveredHi < hi {
		kept = appendNew(kept, m, target, coveredHi, hi, writer, addSet)
	}

	if len(kept) == 0 {
		delete(m.intervals, target)
	} else {
		// kept is not guaranteed sorted by lo (the trailing gap fill of
		// [lo,hi) is appended after any interval wholly above hi), and
		// a later rebuild's coveredHi high-water logic assumes
		// ascending order. Restore it here so every stored interval
		// list keeps the invariant.
		sort.Sort(byLo(kept))
		for i := 1; i < len(kept); i++ {
			if kept[i-1].hi > kept[i].lo {
				panic("rdgraph: RDMap intervals overlap after rebuild")
			}
		}
		m.intervals[target] = kept
	}
}

// appendNew fills the gap [lo, hi) with a freshly created interval
// whose writer set is {writer} or a clone of addSet, subject to the
// precision cap.
func appendNew(kept []*ivEntry, m *RDMap, target *Node, lo, hi uint64, writer *Node, addSet *bitset.BitSet) []*ivEntry {
	if lo >= hi {
		return kept
	}
	var writers *bitset.BitSet
	if addSet != nil {
		writers = addSet.Clone()
	} else {
		writers = singleton(writer)
	}
	if w, collapse := m.collapseIfOversize(writers); collapse {
		m.unknownBucket(target).InPlaceUnion(w)
		writers = w
	}
	return append(kept, &ivEntry{lo: lo, hi: hi, writers: writers})
}

// Merge pointwise unions other into m: for each (target, interval) in
// other, writer sets are unioned into m, splitting at overlap
// boundaries so the result remains an ordered partition.
func (m *RDMap) Merge(other *RDMap) {
	for target, ivs := range other.intervals {
		for _, iv := range ivs {
			m.rebuild(target, iv.lo, iv.hi, nil, iv.writers, false)
		}
	}
	for target, ub := range other.unknown {
		m.unknownBucket(target).InPlaceUnion(ub)
	}
}

// Get returns every writer node whose interval intersects
// [offset, offset+length) of target, plus every writer in target's
// own unknown bucket. When opts.StrongUpdateUnknownSize is set, every
// writer in UnknownMemory's unknown bucket is also included in every
// query, treating a prior UnknownMemory write as potentially reaching
// anywhere (spec §6). An unknown-bounded query conservatively
// intersects every interval of target.
func (m *RDMap) Get(target *Node, offset, length Offset) []*Node {
	result := new(bitset.BitSet)

	if offset.IsUnknown() || length.IsUnknown() {
		for _, iv := range m.intervals[target] {
			result.InPlaceUnion(iv.writers)
		}
	} else {
		lo, _ := offset.Value()
		l, _ := length.Value()
		hi := lo + l
		for _, iv := range m.intervals[target] {
			if iv.lo < hi && lo < iv.hi {
				result.InPlaceUnion(iv.writers)
			}
		}
	}
	if ub, ok := m.unknown[target]; ok {
		result.InPlaceUnion(ub)
	}
	if m.opts.StrongUpdateUnknownSize {
		if ub, ok := m.unknown[unknownMemory]; ok {
			result.InPlaceUnion(ub)
		}
	}

	return m.g.decode(result)
}

// Equal reports whether m and other carry identical writer
// information for every target. It compares each target's interval
// list positionally, which is sound because rebuild always leaves
// m.intervals[target] sorted by lo: two RDMaps built from the same
// content, regardless of the order Merge happened to visit a map's
// targets in, converge to the same ordered list per target.
func (m *RDMap) Equal(other *RDMap) bool {
	if len(m.intervals) != len(other.intervals) || len(m.unknown) != len(other.unknown) {
		return false
	}
	for t, ivs := range m.intervals {
		oivs, ok := other.intervals[t]
		if !ok || len(ivs) != len(oivs) {
			return false
		}
		for i, iv := range ivs {
			if iv.lo != oivs[i].lo || iv.hi != oivs[i].hi || !iv.writers.Equal(oivs[i].writers) {
				return false
			}
		}
	}
	for t, ub := range m.unknown {
		oub, ok := other.unknown[t]
		if !ok || !ub.Equal(oub) {
			return false
		}
	}
	return true
}

// Size returns the total number of distinct (target, interval) writer
// entries stored in m, including unknown buckets. It is mainly useful
// for asserting the precision cap holds after a run.
func (m *RDMap) Size() int {
	n := len(m.unknown)
	for _, ivs := range m.intervals {
		n += len(ivs)
	}
	return n
}

// MaxWriterSetSize returns the largest writer-set cardinality stored
// anywhere in m, for asserting spec §8 invariant 3.
func (m *RDMap) MaxWriterSetSize() uint {
	var max uint
	for _, ivs := range m.intervals {
		for _, iv := range ivs {
			if c := iv.writers.Count(); c > max {
				max = c
			}
		}
	}
	for _, ub := range m.unknown {
		if c := ub.Count(); c > max {
			max = c
		}
	}
	return max
}
