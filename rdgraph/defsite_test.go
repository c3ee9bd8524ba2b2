// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

import "testing"

func newTestTarget() *Node {
	g := NewGraph()
	return g.Create(ALLOC)
}

func TestDefSiteOverlaps(t *testing.T) {
	a := newTestTarget()
	d1 := NewDefSite(a, Off(0), Off(4))
	d2 := NewDefSite(a, Off(2), Off(4))
	d3 := NewDefSite(a, Off(4), Off(4))

	if !d1.Overlaps(d2) {
		t.Error("[0,4) should overlap [2,6)")
	}
	if d1.Overlaps(d3) {
		t.Error("[0,4) should not overlap [4,8)")
	}
}

func TestDefSiteOverlapsDifferentTargets(t *testing.T) {
	a, b := newTestTarget(), newTestTarget()
	d1 := NewDefSite(a, Off(0), Off(4))
	d2 := NewDefSite(b, Off(0), Off(4))
	if d1.Overlaps(d2) {
		t.Error("def sites on different targets should never overlap")
	}
}

func TestDefSiteOverlapsUnknownBounds(t *testing.T) {
	a := newTestTarget()
	d1 := NewDefSite(a, Off(100), Off(4))
	d2 := NewDefSite(a, Unknown, Unknown)
	if !d1.Overlaps(d2) {
		t.Error("an unknown-bounded def site must conservatively overlap everything on its target")
	}
}

func TestDefSiteCovers(t *testing.T) {
	a := newTestTarget()
	whole := NewDefSite(a, Off(0), Off(8))
	partial := NewDefSite(a, Off(2), Off(4))
	if !whole.Covers(partial) {
		t.Error("[0,8) should cover [2,6)")
	}
	if partial.Covers(whole) {
		t.Error("[2,6) should not cover [0,8)")
	}
}

func TestDefSiteLessOrdersByTargetThenOffsetThenLength(t *testing.T) {
	a := newTestTarget()
	d1 := NewDefSite(a, Off(0), Off(4))
	d2 := NewDefSite(a, Off(0), Off(8))
	d3 := NewDefSite(a, Off(4), Off(4))
	if !d1.Less(d2) {
		t.Error("shorter length should sort first at the same offset")
	}
	if !d2.Less(d3) {
		t.Error("lower offset should sort first")
	}
}
