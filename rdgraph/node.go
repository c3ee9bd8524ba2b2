// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

import "fmt"

// NodeType discriminates the operation a Node performs. A single enum
// plus a switch-based transfer function is used instead of a type
// hierarchy: this keeps dispatch a cache-friendly switch rather than a
// virtual call per node, per the design this core preserves from its
// source.
type NodeType int

const (
	// NONE is reserved for UnknownMemory; user code never creates a
	// NONE node.
	NONE NodeType = iota
	ALLOC
	DYN_ALLOC
	STORE
	LOAD
	PHI
	RETURN
	CALL
	CALL_RETURN
	FORK
	JOIN
	NOOP
)

func (t NodeType) String() string {
	switch t {
	case NONE:
		return "NONE"
	case ALLOC:
		return "ALLOC"
	case DYN_ALLOC:
		return "DYN_ALLOC"
	case STORE:
		return "STORE"
	case LOAD:
		return "LOAD"
	case PHI:
		return "PHI"
	case RETURN:
		return "RETURN"
	case CALL:
		return "CALL"
	case CALL_RETURN:
		return "CALL_RETURN"
	case FORK:
		return "FORK"
	case JOIN:
		return "JOIN"
	case NOOP:
		return "NOOP"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is one vertex of the program graph: a typed operation with
// local defs/overwrites/uses, CFG links to its predecessors and
// successors, and (once an analysis has run) a computed incoming
// reaching-definitions map.
type Node struct {
	id    uint
	graph *Graph
	typ   NodeType
	name  string

	defs       []DefSite
	overwrites []DefSite
	uses       []DefSite

	preds []*Node
	succs []*Node

	block *Block

	reachingIn *RDMap

	// callTarget/callExits are set by Graph.LinkCall for CALL nodes
	// whose callee is a known, analyzable subgraph. callReturn points
	// a CALL node at the CALL_RETURN node that will receive the
	// union of the callee's exit maps.
	callTarget *Node
	callExits  []*Node
	callReturn *Node
	opaqueCall bool

	// joinSeqPred and joinChildExits are set by Graph.LinkJoin for
	// JOIN nodes: the sequential predecessor and the exit nodes of
	// each joined thread.
	joinSeqPred    *Node
	joinChildExits []*Node
}

// unknownMemory is the process-wide sentinel standing for "some
// unspecified object". It is created once, at package init, and is
// never copied: every Graph shares this exact pointer, and writer-set
// collapsing relies on that identity.
var unknownMemory = &Node{id: 0, typ: NONE, name: "UNKNOWN_MEMORY"}

// UnknownMemory returns the process-wide memory sentinel. It compares
// equal only to itself via pointer identity; it has no CFG edges and
// is never itself a def/overwrite/use target from user code.
func UnknownMemory() *Node { return unknownMemory }

// ID returns n's unique, monotonically assigned id (0 for
// UnknownMemory).
func (n *Node) ID() uint { return n.id }

// Type returns n's operation type.
func (n *Node) Type() NodeType { return n.typ }

// Name returns a debug-friendly label for n.
func (n *Node) Name() string {
	if n.name != "" {
		return n.name
	}
	return fmt.Sprintf("%s#%d", n.typ, n.id)
}

// SetName sets n's debug label.
func (n *Node) SetName(name string) { n.name = name }

// Preds returns n's CFG predecessors.
func (n *Node) Preds() []*Node { return n.preds }

// Succs returns n's CFG successors.
func (n *Node) Succs() []*Node { return n.succs }

// Defs returns n's weak (may-define) writes.
func (n *Node) Defs() []DefSite { return n.defs }

// Uses returns n's reads.
func (n *Node) Uses() []DefSite { return n.uses }

// GetOverwrites returns n's strong (must-define) writes. The source
// this core is grounded on has a getOverwrites() that actually returns
// defs — a documented bug (spec §9 Open Question 2). This
// reimplementation returns overwrites, as the name promises.
func (n *Node) GetOverwrites() []DefSite { return n.overwrites }

// AddDef records a weak write performed by n.
func (n *Node) AddDef(ds DefSite) { n.defs = append(n.defs, ds) }

// AddOverwrite records a strong write performed by n.
func (n *Node) AddOverwrite(ds DefSite) { n.overwrites = append(n.overwrites, ds) }

// AddUse records a read performed by n.
func (n *Node) AddUse(ds DefSite) { n.uses = append(n.uses, ds) }

// MarkOpaqueCall marks a CALL node whose callee is not modeled by an
// expanded subgraph.
func (n *Node) MarkOpaqueCall() {
	if n.typ != CALL {
		panic("rdgraph: MarkOpaqueCall on non-CALL node")
	}
	n.opaqueCall = true
}

// IsOpaqueCall reports whether n is a CALL node marked opaque.
func (n *Node) IsOpaqueCall() bool { return n.typ == CALL && n.opaqueCall }

// Block returns the basic block n belongs to, or nil before
// Graph.BuildBBlocks has run.
func (n *Node) Block() *Block { return n.block }

// ReachingIn returns the reaching-definitions map computed for n's
// entry by the most recent analysis run, or nil if no run has
// completed.
func (n *Node) ReachingIn() *RDMap { return n.reachingIn }

// setReachingIn is called by the driver after each node's transfer.
func (n *Node) setReachingIn(m *RDMap) { n.reachingIn = m }

// defines reports whether n has a write (weak or, when the query has a
// known offset, strong) overlapping ds. Per spec §9 Open Question 1,
// an unknown-offset query is answered only from defs, never from
// overwrites: the rationale preserved from the source is that a
// strong-update entry should not be treated as satisfying a query that
// cannot itself pin down a byte range.
func (n *Node) defines(ds DefSite) bool {
	for _, d := range n.defs {
		if d.Overlaps(ds) {
			return true
		}
	}
	if ds.HasUnknownBounds() {
		return false
	}
	for _, o := range n.overwrites {
		if o.Overlaps(ds) {
			return true
		}
	}
	return false
}

// linkSucc records a directed CFG edge from n to succ.
func (n *Node) linkSucc(succ *Node) {
	for _, s := range n.succs {
		if s == succ {
			return
		}
	}
	n.succs = append(n.succs, succ)
	succ.preds = append(succ.preds, n)
}

// Step runs n's transfer function on in, recording in as n's
// reaching_in (retrievable via ReachingIn) and returning n's computed
// OUT. It is the single entry point the driver (package reaching)
// uses to advance one node; localTransfer is the part of the spec §4.D
// rules that is purely local to n's own defs/overwrites/uses and type
// (PHI/CALL_RETURN/FORK/JOIN need no extra driver logic beyond the
// generic predecessor union — see Graph.LinkJoin/LinkCall).
func (n *Node) Step(in *RDMap, opts Options, log *Log) *RDMap {
	out := n.localTransfer(in, opts, log)
	n.setReachingIn(in)
	return out
}

// localTransfer applies steps 1-3 and the per-type rules of spec §4.D
// that are purely local to n (ALLOC/DYN_ALLOC/PHI/RETURN/NOOP/STORE/
// LOAD, and the opaque-call case of CALL). CALL_RETURN/FORK/JOIN and
// the non-opaque CALL case have no local effect: their cross-node
// semantics come from the CFG edges Graph.LinkCall/LinkFork/LinkJoin
// wire and the driver's generic predecessor union.
func (n *Node) localTransfer(in *RDMap, opts Options, log *Log) *RDMap {
	out := in.Clone()

	switch n.typ {
	case PHI, CALL_RETURN, FORK, JOIN:
		// Pure join points: no local effect. Their IN is the driver's
		// union of predecessor OUTs, passed through unchanged.
		return out
	case RETURN, NOOP:
		// identity transfer
		return out
	case ALLOC, DYN_ALLOC:
		// n defines the whole object, if the front-end didn't already
		// record an equivalent weak def. The write is stored as the
		// finite interval [0, max uint64) rather than in the unknown
		// bucket, so a later strong update of a sub-range kills n on
		// that sub-range.
		whole := NewDefSite(n, Off(0), Unknown)
		if !n.defines(whole) {
			out.Add(NewDefSite(n, Off(0), Off(^uint64(0))), n)
		}
	case CALL:
		if opts.OpaqueCallKillsAll && (n.IsOpaqueCall() || n.callTarget == nil) {
			ds := NewDefSite(unknownMemory, Off(0), Unknown)
			out.Update(ds, n)
			if log != nil {
				log.Logf(INFO, n, "opaque call treated as writing UNKNOWN_MEMORY")
			}
			return out
		}
		// Non-opaque calls contribute nothing locally; the callee
		// subgraph performs the writes. The driver seeds the callee
		// entry's IN from this OUT.
		return out
	}

	for _, ds := range n.overwrites {
		out.Update(ds, n)
	}
	for _, ds := range n.defs {
		out.Add(ds, n)
	}
	return out
}
