// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

// Block (RDBBlock) is a maximal straight-line run of nodes: every
// inner node has exactly one predecessor inside the block and exactly
// one successor inside the block. Block construction here generalizes
// the boundary-detection shape of the teacher's extras/cfg builder
// (a node starts a new vertex run if it has more than one predecessor,
// or its one predecessor has more than one successor) from ast.Stmt
// vertices to *Node vertices, and adds the node-type-forced boundaries
// spec §4.E requires on top.
type Block struct {
	id    int
	nodes []*Node

	// definitions summarizes this block's local effects: it is
	// rebuilt by Graph.BuildBBlocks by running each node's local
	// transfer in sequence starting from an empty map, and is used by
	// block-level iteration strategies that want a single per-block
	// summary instead of re-walking every node.
	definitions *RDMap
}

// ID returns b's insertion-order index.
func (b *Block) ID() int { return b.id }

// Nodes returns the nodes in b, in CFG order.
func (b *Block) Nodes() []*Node { return b.nodes }

// First returns b's first node.
func (b *Block) First() *Node { return b.nodes[0] }

// Last returns b's last node.
func (b *Block) Last() *Node { return b.nodes[len(b.nodes)-1] }

// Preds returns the distinct blocks containing a predecessor of b's
// first node.
func (b *Block) Preds() []*Block {
	return neighborBlocks(b.First().preds)
}

// Succs returns the distinct blocks containing a successor of b's last
// node.
func (b *Block) Succs() []*Block {
	return neighborBlocks(b.Last().succs)
}

func neighborBlocks(ns []*Node) []*Block {
	var out []*Block
	seen := make(map[*Block]bool)
	for _, n := range ns {
		if n.block != nil && !seen[n.block] {
			seen[n.block] = true
			out = append(out, n.block)
		}
	}
	return out
}

// forcesBoundary reports whether a node of this type always starts a
// new block, regardless of its predecessor shape, per spec §4.E.
func forcesBoundary(t NodeType) bool {
	switch t {
	case FORK, JOIN, PHI, CALL, CALL_RETURN, RETURN:
		return true
	default:
		return false
	}
}

// startsBlock reports whether n must begin a new block: it is the
// root, it has zero or multiple predecessors, its sole predecessor has
// multiple successors, or its type forces a boundary.
func (g *Graph) startsBlock(n *Node) bool {
	if n == g.root {
		return true
	}
	if forcesBoundary(n.typ) {
		return true
	}
	if len(n.preds) != 1 {
		return true
	}
	return len(n.preds[0].succs) > 1
}

// reachable returns every node reachable from root by CFG successor
// edges, additionally descending into CALL nodes' expanded callee
// subgraphs (via callTarget) so their nodes are assigned blocks too.
func (g *Graph) reachable() []*Node {
	if g.root == nil {
		return nil
	}
	var order []*Node
	visited := make(map[*Node]bool)
	queue := []*Node{g.root}
	visited[g.root] = true
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		next := n.succs
		if n.typ == CALL && n.callTarget != nil {
			next = append(append([]*Node{}, next...), n.callTarget)
		}
		for _, s := range next {
			if !visited[s] {
				visited[s] = true
				queue = append(queue, s)
			}
		}
	}
	return order
}

// BuildBBlocks partitions g's reachable nodes into maximal
// straight-line blocks and freezes the node-to-block association.
// After BuildBBlocks, every reachable node belongs to exactly one
// block, and g.Blocks() yields blocks in insertion order.
func (g *Graph) BuildBBlocks(opts Options) error {
	if g.root == nil {
		return errNilRoot
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	g.blocks = nil
	// Drop associations left by an earlier call; nodes[0] is the
	// shared UnknownMemory sentinel, which never belongs to a block.
	for _, n := range g.nodes[1:] {
		n.block = nil
	}

	for _, n := range g.reachable() {
		if n.block != nil {
			continue
		}
		if !g.startsBlock(n) {
			// Will be picked up when its predecessor's chain walk
			// reaches it below; nothing to do yet if we haven't
			// visited the predecessor. Since reachable() is a BFS
			// from root, predecessors of non-boundary nodes (which
			// have exactly one predecessor) are always visited no
			// later than the node itself, so by the time we get
			// here n.block should already be set. Guard anyway.
			continue
		}
		b := &Block{id: len(g.blocks)}
		g.blocks = append(g.blocks, b)

		cur := n
		for {
			cur.block = b
			b.nodes = append(b.nodes, cur)

			if len(cur.succs) != 1 {
				break
			}
			next := cur.succs[0]
			if next.block != nil || g.startsBlock(next) {
				break
			}
			cur = next
		}
	}

	for _, b := range g.blocks {
		b.definitions = g.summarizeBlock(b, opts)
	}
	return nil
}

// summarizeBlock computes a block's local definitions map by running
// each node's local transfer function in sequence from an empty map.
// It does not account for CALL/CALL_RETURN/FORK/JOIN cross-node
// effects (those require the driver); it is a summary of what the
// block itself defines, used by callers that want a coarse per-block
// view without re-walking nodes.
func (g *Graph) summarizeBlock(b *Block, opts Options) *RDMap {
	m := NewRDMap(g, opts)
	for _, n := range b.nodes {
		m = n.localTransfer(m, opts, nil)
	}
	return m
}

// Definitions returns b's cached local-effects summary, computed by
// the most recent BuildBBlocks call.
func (b *Block) Definitions() *RDMap { return b.definitions }
