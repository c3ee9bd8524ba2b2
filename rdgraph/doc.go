// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rdgraph provides the data model for a whole-program
// reaching-definitions dataflow engine: a memory-aware representation of
// "what bytes of which abstract object were written" (Offset, DefSite),
// the graph of operations the analysis runs over (Node, Graph), the
// basic-block partitioning built on top of it (Block), and the
// bitset-backed map of reaching writers (RDMap).
//
// Nodes, their CFG edges, and their local defs/overwrites/uses are
// supplied by an external front-end that lowers some compiler IR into
// this graph; rdgraph itself performs no IR lowering. A separate
// points-to engine supplies the memory-object identities and offset
// ranges that appear in DefSites; rdgraph treats those identities
// opaquely.
package rdgraph
