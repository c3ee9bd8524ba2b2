// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

import "golang.org/x/xerrors"

// Construction-time precondition errors, per spec §7: malformed input
// is rejected at the boundary rather than discovered mid-run.
var (
	errNilRoot        = xerrors.New("rdgraph: graph has no root; call SetRoot before BuildBBlocks")
	errZeroMaxSetSize = xerrors.New("rdgraph: maxSetSize must be >= 1")
)
