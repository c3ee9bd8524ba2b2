// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

import "testing"

func TestGraph_CreateAssignsMonotonicIDs(t *testing.T) {
	g := NewGraph()
	a := g.Create(ALLOC)
	b := g.Create(STORE)
	if b.ID() <= a.ID() {
		t.Errorf("ids should increase in creation order, got a=%d b=%d", a.ID(), b.ID())
	}
	if UnknownMemory().ID() != 0 {
		t.Errorf("UnknownMemory should reserve id 0, got %d", UnknownMemory().ID())
	}
}

func TestGraph_SetRootRejectsForeignNode(t *testing.T) {
	g1, g2 := NewGraph(), NewGraph()
	n := g2.Create(ALLOC)
	if err := g1.SetRoot(n); err == nil {
		t.Error("SetRoot should reject a node belonging to a different graph")
	}
}

func TestGraph_SetRootRejectsNil(t *testing.T) {
	g := NewGraph()
	if err := g.SetRoot(nil); err == nil {
		t.Error("SetRoot should reject a nil root")
	}
}

func TestGraph_LinkSuccIsIdempotent(t *testing.T) {
	g := NewGraph()
	a := g.Create(ALLOC)
	b := g.Create(STORE)
	g.LinkSucc(a, b)
	g.LinkSucc(a, b)
	if len(a.Succs()) != 1 {
		t.Errorf("linking the same edge twice should not duplicate it, got %d succs", len(a.Succs()))
	}
	if len(b.Preds()) != 1 {
		t.Errorf("linking the same edge twice should not duplicate the reverse edge, got %d preds", len(b.Preds()))
	}
}

func TestGraph_LinkCallWiresEntryAndExits(t *testing.T) {
	g := NewGraph()
	call := g.Create(CALL)
	entry := g.Create(NOOP)
	exit1 := g.Create(RETURN)
	exit2 := g.Create(RETURN)
	callReturn := g.Create(CALL_RETURN)

	g.LinkCall(call, entry, []*Node{exit1, exit2}, callReturn)

	if len(call.Succs()) != 1 || call.Succs()[0] != entry {
		t.Error("LinkCall should wire call -> entry")
	}
	found1, found2 := false, false
	for _, p := range callReturn.Preds() {
		if p == exit1 {
			found1 = true
		}
		if p == exit2 {
			found2 = true
		}
	}
	if !found1 || !found2 {
		t.Error("LinkCall should wire both exits -> callReturn")
	}
}

func TestGraph_LinkJoinMergesSeqPredAndChildExits(t *testing.T) {
	g := NewGraph()
	seqPred := g.Create(NOOP)
	childExit := g.Create(NOOP)
	join := g.Create(JOIN)

	g.LinkJoin(join, seqPred, childExit)

	if len(join.Preds()) != 2 {
		t.Errorf("JOIN should have 2 preds (seqPred + childExit), got %d", len(join.Preds()))
	}
}

func TestGraph_ReversePostorderStartsAtRoot(t *testing.T) {
	g := NewGraph()
	a := g.Create(ALLOC)
	b := g.Create(STORE)
	c := g.Create(LOAD)
	g.SetRoot(a)
	g.LinkSucc(a, b)
	g.LinkSucc(b, c)

	order := g.ReversePostorder()
	if len(order) != 3 || order[0] != a {
		t.Errorf("ReversePostorder should start from root, got %v", order)
	}
}
