// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reaching implements the whole-program reaching-definitions
// fixpoint (ReachingDefinitionsAnalysis, spec §4.G): a monotone,
// work-list-driven forward dataflow analysis over an rdgraph.Graph,
// bounded by rdgraph.Options.MaxSetSize to guarantee termination and
// bounded memory.
//
// The algorithm is block-level, in the shape of the reaching
// definitions pass this package is grounded on
// (godoctor/analysis/dataflow/reaching.go): compute IN(B) as the union
// of OUT(P) over B's predecessor blocks, walk B's nodes applying each
// one's transfer function, and re-enqueue B's successors whenever
// OUT(B) changes. Unlike that pass's fixed two-pass sweep, this driver
// uses a genuine work list (spec §4.G explicitly calls for one), and
// unlike a hand-rolled map[*Block]bool for "already queued", it reuses
// the one bitset dependency the algorithm already needs for writer
// sets (see rdgraph.RDMap), indexed here by Block.ID.
//
// CALL/CALL_RETURN/FORK/JOIN need no special-cased driver logic: their
// cross-node semantics (spec §4.G) fall out of the generic
// "IN(B) = union of OUT(preds)" rule once rdgraph.Graph.LinkCall,
// LinkFork, and LinkJoin have wired the appropriate CFG edges at
// construction time (calls by edge rewiring rather than stack-based
// recursion, per spec §9's design notes).
package reaching

import (
	"context"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/xerrors"

	"github.com/rdanalysis/reachdef/rdgraph"
)

// Options configures the driver; it is rdgraph's Options verbatim
// (spec §6's "configuration object").
type Options = rdgraph.Options

// DefaultOptions returns spec §6's default configuration.
func DefaultOptions() Options { return rdgraph.DefaultOptions() }

// Analysis is the reaching-definitions fixpoint driver
// (ReachingDefinitionsAnalysis). All mutable run state is created
// fresh inside Run, per node/per graph, rather than held in
// process-wide tables — the per-analysis-context discipline spec §9's
// design notes ask for in place of the sibling points-to component's
// process-wide id tables.
type Analysis struct {
	g    *rdgraph.Graph
	opts Options
	log  *rdgraph.Log

	in, out map[*rdgraph.Block]*rdgraph.RDMap
}

// NewAnalysis validates opts and g's precondition (a non-nil root) and
// returns a driver ready to Run. Malformed input is rejected here,
// at construction, per spec §7.
func NewAnalysis(g *rdgraph.Graph, opts Options) (*Analysis, error) {
	if g == nil {
		return nil, xerrors.New("reaching: nil graph")
	}
	if g.Root() == nil {
		return nil, xerrors.New("reaching: graph has no root")
	}
	if err := opts.Validate(); err != nil {
		return nil, xerrors.Errorf("reaching: %w", err)
	}
	return &Analysis{g: g, opts: opts}, nil
}

// EnableLog turns on the INFO-level diagnostic trail (sentinel
// propagation events) for subsequent Run calls. See rdgraph.Log.
func (a *Analysis) EnableLog() { a.log = rdgraph.NewLog() }

// Log returns the diagnostic trail accumulated by every Run since the
// last EnableLog call, or nil if EnableLog was never called.
func (a *Analysis) Log() *rdgraph.Log { return a.log }

// In returns the computed incoming reaching-definitions map for block
// b, or nil before Run has processed it.
func (a *Analysis) In(b *rdgraph.Block) *rdgraph.RDMap { return a.in[b] }

// Out returns the computed outgoing reaching-definitions map for block
// b, or nil before Run has processed it.
func (a *Analysis) Out(b *rdgraph.Block) *rdgraph.RDMap { return a.out[b] }

// Run (re)partitions g into basic blocks via BuildBBlocks and
// iterates the work-list fixpoint to completion, recording each
// node's reaching_in as it goes (retrievable via Node.ReachingIn).
// Run is a blocking, synchronous, single-threaded computation; ctx is
// polled between work-list pops for cooperative cancellation (spec
// §5 — cancellation is not itself part of the sequential algorithm's
// contract, but is a natural extension given golang.org/x/tools,
// an indirect dependency of this module, is context-aware
// throughout).
func (a *Analysis) Run(ctx context.Context) error {
	if err := a.g.BuildBBlocks(a.opts); err != nil {
		return err
	}
	blocks := a.g.Blocks()

	a.in = make(map[*rdgraph.Block]*rdgraph.RDMap, len(blocks))
	a.out = make(map[*rdgraph.Block]*rdgraph.RDMap, len(blocks))
	for _, b := range blocks {
		a.in[b] = rdgraph.NewRDMap(a.g, a.opts)
		a.out[b] = rdgraph.NewRDMap(a.g, a.opts)
	}

	order := a.blockOrder(blocks)

	enqueued := new(bitset.BitSet)
	queue := make([]*rdgraph.Block, len(order))
	copy(queue, order)
	for _, b := range order {
		enqueued.Set(uint(b.ID()))
	}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		b := queue[0]
		queue = queue[1:]
		enqueued.Clear(uint(b.ID()))

		newIn := rdgraph.NewRDMap(a.g, a.opts)
		for _, p := range b.Preds() {
			newIn.Merge(a.out[p])
		}
		a.in[b] = newIn

		cur := newIn
		for _, n := range b.Nodes() {
			cur = n.Step(cur, a.opts, a.log)
		}
		newOut := cur

		if !newOut.Equal(a.out[b]) {
			a.out[b] = newOut
			for _, s := range b.Succs() {
				if !enqueued.Test(uint(s.ID())) {
					enqueued.Set(uint(s.ID()))
					queue = append(queue, s)
				}
			}
		}
	}
	return nil
}

// blockOrder returns blocks in reverse postorder from the graph's
// root, appending in construction order any block the DFS did not
// reach. BuildBBlocks only creates blocks for nodes reachable from the
// root (following the same successor and callee edges the DFS
// follows), so that fallback is a guard. Order only affects
// convergence speed, per spec §4.G step 1.
func (a *Analysis) blockOrder(blocks []*rdgraph.Block) []*rdgraph.Block {
	seen := make(map[*rdgraph.Block]bool, len(blocks))
	var order []*rdgraph.Block
	for _, n := range a.g.ReversePostorder() {
		if b := n.Block(); b != nil && !seen[b] {
			seen[b] = true
			order = append(order, b)
		}
	}
	for _, b := range blocks {
		if !seen[b] {
			seen[b] = true
			order = append(order, b)
		}
	}
	return order
}
