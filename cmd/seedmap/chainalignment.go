package main

import (
	"github.com/biomapper/seedmap/align"
	"github.com/biomapper/seedmap/seedmap"
)

// chainAlignment adapts a resolved SeedChain to align.Alignment so this
// command's golden path can exercise pair-picking and MAPQ end to end
// without a full gapped aligner: its "score" is simply read coverage, and
// its bounds are the chain's projected reference span. A real deployment
// would plug in scores and clipped bounds from whatever performs full
// alignment against the chosen chain.
type chainAlignment struct {
	chain   *seedmap.SeedChain
	refID   int
	readLen int
}

func (a *chainAlignment) ReferenceID() int          { return a.refID }
func (a *chainAlignment) Start() uint64             { return a.chain.FirstRefBase }
func (a *chainAlignment) End() uint64               { return a.chain.LastRefBase }
func (a *chainAlignment) IsReverseComplement() bool { return a.chain.ReverseComplement }
func (a *chainAlignment) Score() int                { return a.chain.Coverage }
func (a *chainAlignment) Mapq() int                 { return 0 }
func (a *chainAlignment) UnclippedStart() uint64    { return a.chain.FirstRefBase }
func (a *chainAlignment) UnclippedEnd() uint64      { return a.chain.LastRefBase }
func (a *chainAlignment) IsUnmapped() bool          { return a.chain == nil }

func toAlignment(c *seedmap.SeedChain, readLen int) align.Alignment {
	if c == nil {
		return nil
	}
	return &chainAlignment{chain: c, readLen: readLen}
}
