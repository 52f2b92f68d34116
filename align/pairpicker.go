package align

// Config carries the scoring/MAPQ tunables that aren't part of
// InsertSizeParameters.
type Config struct {
	UnpairedPenalty int
	XsPairPenalty   int
	SnpCost         int
	MapqMinLen      int
	MinScore        int
	SampleMapq0     int // 0: never force; 1: random-sample-only pairs; 2: also extra pairs
}

// ComputePairPenalty computes the insert-size
// penalty looked up from petabROM, scaled by mapq2aln(snpCost,
// max(mapqMinLen, readLen)), which callers subtract from the sum of mate
// scores (see BestPair).
func ComputePairPenalty(cfg Config, insertParams *InsertSizeParameters, a1, a2 Alignment, properPair bool, readLen int) (penalty, insertLen, insertDiff int) {
	m2aPenalty := cfg.UnpairedPenalty
	if properPair && a1 != nil && a2 != nil {
		beg, end := insertSpan(a1, a2, insertParams.Orientation)
		insertLen = int(end-beg) + 1
		insertDiff = abs(insertLen - insertParams.Mean)

		insProd := uint64(insertDiff) * uint64(insertParams.SigmaFactor())
		insProdQ := int((insProd >> sigmaFactorFracBits) & petabAddrMask)
		if insProdQ < len(petabROM) {
			m2aPenalty = petabROM[insProdQ]
		} else {
			m2aPenalty = cfg.UnpairedPenalty
		}
	}

	m2aScale := mapq2aln(cfg.SnpCost, maxInt(cfg.MapqMinLen, readLen))
	penalty = (m2aScale * m2aPenalty) >> 10
	return penalty, insertLen, insertDiff
}

// mapq2aln and aln2mapq convert between a phred-scale MAPQ delta and an
// alignment-score delta for a read of the given effective length.
// original_source/src/lib/align/PairBuilder.cpp calls these as
// library-provided monotone scaling functions but their definitions are not
// part of the filtered corpus; this implementation adopts the conventional
// DRAGEN-style scaling (proportional to snpCost and to read length, in
// fixed 10-bit point per the `>>10` normalization the caller applies) as a
// deliberate, documented resolution of that gap (see DESIGN.md).
func mapq2aln(snpCost, effectiveLen int) int {
	return snpCost * effectiveLen
}

func aln2mapq(snpCost, effectiveLen int) int {
	scale := mapq2aln(snpCost, effectiveLen)
	if scale == 0 {
		return 0
	}
	return (1 << 20) / scale
}

// computeMapq derives a MAPQ value from the gap between the best and
// second-best scores, scaled through aln2mapq, capped at Phred 60 (the
// conventional SAM ceiling) and floored at 0. It is monotone non-increasing
// in secondBestScore.
func computeMapq(snpCost, bestScore, secondBestScore, effectiveLen int) int {
	gap := bestScore - secondBestScore
	if gap <= 0 {
		return 0
	}
	scale := aln2mapq(snpCost, effectiveLen)
	mapq := (gap * scale) >> 10
	if mapq > 60 {
		mapq = 60
	}
	return mapq
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
func log2Floor(v int) int {
	if v <= 0 {
		return 0
	}
	n := 0
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// FindSecondBest returns the highest-scoring pair other than best whose
// mate at readIdx doesn't share an alignment identity with best's mate at
// readIdx (approximated here by pointer identity, since Alignment is
// opaque), or nil if none exists.
func FindSecondBest(pairs []Pair, best *Pair, readIdx int) *Pair {
	var ret *Pair
	bestMate := mateAt(best, readIdx)
	for i := range pairs {
		p := &pairs[i]
		if p == best {
			continue
		}
		if mateAt(p, readIdx) == bestMate {
			continue
		}
		if ret == nil || ret.Score < p.Score {
			ret = p
		}
	}
	return ret
}

func mateAt(p *Pair, readIdx int) Alignment {
	if readIdx == 0 {
		return p.A1
	}
	return p.A2
}

// UpdateEndMapq computes a mate's MAPQ: the gap to the best
// eligible second-best score, penalized for the number of near-tied
// suboptimal candidates (subCount), and capped by the cross-strand
// suboptimal heuristic when present.
func UpdateEndMapq(cfg Config, readLen int, bestScore, secondBestScore, subCount int, xsScoreDiff *int, a2mScale int) int {
	minScore := maxInt(cfg.MinScore, secondBestScore)
	mapq := computeMapq(cfg.SnpCost, bestScore, minScore, maxInt(cfg.MapqMinLen, readLen))
	if subCount > 1 {
		mapq -= (3 * log2Floor(subCount)) >> 7
	}
	if xsScoreDiff != nil {
		xsHeurMapq := ((*xsScoreDiff)*a2mScale)>>13 + cfg.XsPairPenalty
		if xsHeurMapq < 0 {
			xsHeurMapq = 0
		}
		if xsHeurMapq < mapq {
			mapq = xsHeurMapq
		}
	}
	if mapq < 0 {
		mapq = 0
	}
	return mapq
}

// ForceMapq0 implements the sampleMapq0 override: MAPQ is forced to 0 when
// the best pair has only random samples (sampleMapq0 >= 1) or is extra
// (sampleMapq0 >= 2).
func ForceMapq0(cfg Config, best *Pair) bool {
	if cfg.SampleMapq0 >= 1 && best.HasOnlyRandomSamples {
		return true
	}
	if cfg.SampleMapq0 >= 2 && best.IsExtra {
		return true
	}
	return false
}

// BestPair selects the highest-scoring eligible pair: score = a1.score +
// a2.score - pairPenalty, among pairs where at least one mate is eligible.
func BestPair(pairs []Pair) (*Pair, bool) {
	var best *Pair
	for i := range pairs {
		p := &pairs[i]
		if p.A1 == nil && p.A2 == nil {
			continue
		}
		if best == nil || p.Score > best.Score {
			best = p
		}
	}
	return best, best != nil
}
