// Package align implements the alignment-rescue and pair-scoring
// components: the Alignment type passed in from the external
// aligner, rescue by reference k-mer scanning, insert-size-aware pair
// penalties, and MAPQ derivation.
package align

// Alignment is the opaque external alignment result the pipeline consumes:
// it is produced outside this package (by whatever performs full gapped
// alignment against a chain) and is only ever read here.
type Alignment interface {
	ReferenceID() int
	Start() uint64
	End() uint64
	IsReverseComplement() bool
	Score() int
	Mapq() int
	UnclippedStart() uint64
	UnclippedEnd() uint64
	IsUnmapped() bool
}

// Pair is a resolved alignment pair for one read pair (a1, a2 may be nil if
// that mate is unmapped).
type Pair struct {
	A1, A2                Alignment
	Score                 int
	IsProperPair          bool
	HasOnlyRandomSamples  bool
	IsExtra               bool
}

// PairMatches tests the pair-match predicate: same
// reference, orientation consistent with the expected pairing, insert
// length within [peMin, peMax], and neither mate's 5' end extending more
// than 6 bases past the chosen insert endpoint (the nested-mate guard).
func PairMatches(a1, a2 Alignment, p *InsertSizeParameters) bool {
	if a1 == nil || a2 == nil || a1.ReferenceID() != a2.ReferenceID() {
		return false
	}
	sameStrand := a1.IsReverseComplement() == a2.IsReverseComplement()
	switch p.Orientation {
	case OrientFR, OrientRF:
		if sameStrand {
			return false
		}
	case OrientFF, OrientRR:
		if !sameStrand {
			return false
		}
	}

	beg, end := insertSpan(a1, a2, p.Orientation)
	insertLen := int(end-beg) + 1
	if insertLen < p.Min || insertLen > p.Max {
		return false
	}

	const nestedMateGuard = 6
	if int(a1.UnclippedStart()) < int(beg)-nestedMateGuard && int(a1.UnclippedEnd()) > int(end)+nestedMateGuard {
		return false
	}
	if int(a2.UnclippedStart()) < int(beg)-nestedMateGuard && int(a2.UnclippedEnd()) > int(end)+nestedMateGuard {
		return false
	}
	return true
}

// insertSpan computes the effective [begin, end] of the fragment per
// orientation: FF/RR take the outermost bounds; FR/RF take begin from the
// forward mate and end from the reverse mate (or vice versa, whichever mate
// is forward under the expected orientation).
func insertSpan(a1, a2 Alignment, orientation Orientation) (beg, end uint64) {
	b1, e1 := a1.UnclippedStart(), a1.UnclippedEnd()
	b2, e2 := a2.UnclippedStart(), a2.UnclippedEnd()
	if orientation == OrientFF || orientation == OrientRR {
		beg = minU64(b1, b2)
		end = maxU64(e1, e2)
		return
	}
	a1Forward := !a1.IsReverseComplement()
	if (orientation == OrientFR) == a1Forward {
		return b1, e2
	}
	return b2, e1
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
