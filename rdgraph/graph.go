// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

import (
	"github.com/bits-and-blooms/bitset"
	"golang.org/x/xerrors"
)

// Graph owns every Node and Block created for one program (or one
// whole-program run): it is the arena the teacher's CFG.vMap style is
// generalized from. Graphs are not safe to mutate concurrently with an
// in-progress analysis run.
type Graph struct {
	nodes  []*Node // nodes[0] is always UnknownMemory; nodes[i].id == i
	blocks []*Block
	root   *Node
}

// NewGraph returns an empty Graph, primed with the shared
// UnknownMemory sentinel at id 0.
func NewGraph() *Graph {
	return &Graph{nodes: []*Node{unknownMemory}}
}

// Create allocates a new Node of the given type, assigns it the next
// id, and adds it to g. The returned Node is a stable reference valid
// for g's lifetime.
func (g *Graph) Create(t NodeType) *Node {
	if t == NONE {
		panic("rdgraph: Create(NONE) is reserved for UnknownMemory")
	}
	n := &Node{id: uint(len(g.nodes)), graph: g, typ: t}
	g.nodes = append(g.nodes, n)
	return n
}

// SetRoot designates n as g's unique entry node. n must already belong
// to g.
func (g *Graph) SetRoot(n *Node) error {
	if n == nil {
		return xerrors.Errorf("rdgraph: SetRoot: nil root")
	}
	if n.graph != g {
		return xerrors.Errorf("rdgraph: SetRoot: node %s does not belong to this graph", n.Name())
	}
	g.root = n
	return nil
}

// Root returns g's entry node, or nil if none has been set.
func (g *Graph) Root() *Node { return g.root }

// Nodes returns every node g owns, including UnknownMemory at index 0.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Blocks returns g's basic blocks in insertion (construction) order.
// Valid only after BuildBBlocks.
func (g *Graph) Blocks() []*Block { return g.blocks }

// LinkSucc adds a directed CFG edge from -> to. Both nodes must belong
// to g.
func (g *Graph) LinkSucc(from, to *Node) {
	if from.graph != g || to.graph != g {
		panic("rdgraph: LinkSucc across graphs")
	}
	from.linkSucc(to)
}

// LinkFork wires a FORK node to a spawned thread's entry node by
// adding childEntry as an ordinary CFG successor of fork, alongside
// fork's sequential successor (wired separately via LinkSucc). Because
// both receive fork's OUT through the normal successor-propagation
// rule, no ordering between the child and the code after the fork is
// assumed, matching spec §4.G.
func (g *Graph) LinkFork(fork, childEntry *Node) {
	if fork.typ != FORK {
		panic("rdgraph: LinkFork: from is not a FORK node")
	}
	g.LinkSucc(fork, childEntry)
}

// LinkJoin wires join as a JOIN node over seqPred (the sequential
// predecessor) and childExits (the exit nodes of each joined thread),
// and stores both on the join node. Because all of
// seqPred and childExits become ordinary CFG predecessors of join, the
// generic "IN(B) = union of OUT(preds)" rule already implements spec
// §4.G's IN(JOIN) formula and its "strong updates demoted to weak"
// requirement: RDMap.Merge only ever unions writer sets, so a strong
// update local to one thread can never silently kill a sibling
// thread's writers once both sides reach the join.
func (g *Graph) LinkJoin(join, seqPred *Node, childExits ...*Node) {
	if join.typ != JOIN {
		panic("rdgraph: LinkJoin: join is not a JOIN node")
	}
	g.LinkSucc(seqPred, join)
	for _, exit := range childExits {
		g.LinkSucc(exit, join)
	}
	join.joinSeqPred = seqPred
	join.joinChildExits = append(join.joinChildExits, childExits...)
}

// LinkCall wires a CALL node to a known, analyzable callee subgraph
// with entry node entry and exit nodes exits, and to the CALL_RETURN
// node that should receive the union of the callee's exit maps.
// Modeling calls by edge rewiring at construction time — call becomes
// an ordinary CFG predecessor of entry, and each exit becomes an
// ordinary CFG predecessor of callReturn — rather than by recursive
// descent in the driver, lets the work-list algorithm handle
// recursive call graphs uniformly: the generic per-block union rule
// implements spec §4.G's "IN(e_c) gets OUT(CALL)" and
// "IN(CALL_RETURN) = union OUT(exits)" without any call-specific
// driver logic.
func (g *Graph) LinkCall(call *Node, entry *Node, exits []*Node, callReturn *Node) {
	if call.typ != CALL {
		panic("rdgraph: LinkCall: call is not a CALL node")
	}
	if callReturn.typ != CALL_RETURN {
		panic("rdgraph: LinkCall: callReturn is not a CALL_RETURN node")
	}
	call.callTarget = entry
	call.callExits = append([]*Node{}, exits...)
	call.callReturn = callReturn
	callReturn.callTarget = call

	g.LinkSucc(call, entry)
	for _, exit := range exits {
		g.LinkSucc(exit, callReturn)
	}
}

// decode resolves a bitset of node ids back into the corresponding
// Node pointers, in ascending id order.
func (g *Graph) decode(b *bitset.BitSet) []*Node {
	var out []*Node
	for i, ok := uint(0), true; ok; i++ {
		if i, ok = b.NextSet(i); ok {
			if int(i) < len(g.nodes) {
				out = append(out, g.nodes[i])
			}
		}
	}
	return out
}

// ReversePostorder returns g's nodes in reverse postorder from the
// root, via depth-first search. This is used to seed the block
// work-list for faster convergence (spec §4.G step 1 permits any
// order, including a plain BFS; RPO is the documented strengthening
// this repo uses).
func (g *Graph) ReversePostorder() []*Node {
	if g.root == nil {
		return nil
	}
	var post []*Node
	visited := make(map[*Node]bool)
	var visit func(n *Node)
	visit = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range n.succs {
			visit(s)
		}
		if n.typ == CALL && n.callTarget != nil {
			visit(n.callTarget)
		}
		post = append(post, n)
	}
	visit(g.root)

	rev := make([]*Node, len(post))
	for i, n := range post {
		rev[len(post)-1-i] = n
	}
	return rev
}
