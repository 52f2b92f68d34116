package align

import (
	"github.com/biomapper/seedmap/reference"
	"github.com/biomapper/seedmap/seedmap"
	"github.com/biomapper/seedmap/sequences"
)

// RescueMaxSNPs is the mismatch ceiling a rescue window must clear to be
// usable.
const RescueMaxSNPs = 7

const rescueKmerLen = 32

// TriggeredBy implements the rescue trigger: an extra chain
// always triggers rescue; otherwise the anchor's read span must clear the
// configured minimum, which differs depending on whether any pair already
// matched normally.
func TriggeredBy(anchored *seedmap.SeedChain, anyPairMatch bool, rescIfPairLen, rescNoPairLen int) bool {
	if anchored.Extra {
		return true
	}
	chainLen := anchored.ReadSpanLength()
	if anyPairMatch {
		return chainLen >= rescIfPairLen
	}
	return chainLen >= rescNoPairLen
}

// GetReferenceInterval computes the reference window to scan for mate B,
// given the anchor chain on mate A. The returned length is
// rounded up to a multiple of 4.
func GetReferenceInterval(anchored *seedmap.SeedChain, insertParams *InsertSizeParameters, mateBLen int) (start uint64, length int) {
	var p uint64
	if anchored.ReverseComplement {
		p = anchored.LastRefBase
	} else {
		p = anchored.FirstRefBase
	}

	var lo, hi int64
	if !anchored.ReverseComplement {
		lo = int64(p) + int64(insertParams.Min) - int64(mateBLen+1)
		hi = int64(p) + int64(insertParams.Max)
	} else {
		lo = int64(p) - int64(insertParams.Max)
		hi = int64(p) - int64(insertParams.Min) + int64(mateBLen+1)
	}
	if lo < 0 {
		lo = 0
	}
	length = int(hi - lo)
	if rem := length % 4; rem != 0 {
		length += 4 - rem
	}
	return uint64(lo), length
}

// rescueKey is a 32-base window of mate B, packed two bases per byte,
// leftmost base in the high nibble of byte 0 (mirrors the original's
// "left base in the high byte of the high lane" SIMD key layout, adapted
// to a plain byte slice since this implementation has no SIMD backend).
type rescueKey [rescueKmerLen / 2]byte

func buildRescueKey(bases []reference.Base4) rescueKey {
	var k rescueKey
	for i, b := range bases {
		if i%2 == 0 {
			k[i/2] = byte(b) << 4
		} else {
			k[i/2] |= byte(b)
		}
	}
	return k
}

// GetRescueKmers extracts the two 32-base rescue windows from mate B's
// forward bases: the first 32 bases, and the 32 bases ending at
// readLen-modOffset, where modOffset = readLen mod 4. A key is built (ok1/ok2
// true) only when its full 32-base window fits in the read; no shorter key is
// built, so a read under 32 bases yields no rescue key.
func GetRescueKmers(mateB []reference.Base4) (key1, key2 rescueKey, ok1, ok2 bool) {
	readLen := len(mateB)
	modOffset := readLen % 4
	if readLen >= rescueKmerLen {
		key1 = buildRescueKey(mateB[0:rescueKmerLen])
		ok1 = true
	}
	tailLen := readLen - modOffset
	if tailLen >= rescueKmerLen {
		key2 = buildRescueKey(mateB[tailLen-rescueKmerLen : tailLen])
		ok2 = true
	}
	return
}

// countMismatches returns 32 minus the popcount of (key AND refWindow),
// after masking any reference N (0xF) to 0, mirroring the nibble-table
// driven counting idiom the corpus uses for packed 4-bit data.
func countMismatches(key rescueKey, refWindow []reference.Base4) int {
	matches := 0
	for i := 0; i < rescueKmerLen; i++ {
		var kb reference.Base4
		if i%2 == 0 {
			kb = reference.Base4(key[i/2] >> 4)
		} else {
			kb = reference.Base4(key[i/2] & 0xF)
		}
		rb := refWindow[i]
		if rb == 0xF {
			rb = 0
		}
		if kb&rb != 0 {
			matches++
		}
	}
	return rescueKmerLen - matches
}

type scanResult struct {
	bestMismatches int
	bestIndex      int
	conflict       bool
}

// scanKey scans a single rescue key against its own reference window only,
// starting at winStart and advancing one reference base per iteration. It
// returns the best-scoring iteration index rather than a raw reference
// offset, so the two keys' results -- scanned over different windows that
// share the same iteration range -- stay directly comparable.
func scanKey(key rescueKey, ok bool, refBases []reference.Base4, scanLength, winStart int) scanResult {
	res := scanResult{bestMismatches: rescueKmerLen + 1}
	if !ok {
		return res
	}
	for i := 0; i < scanLength; i++ {
		w := refBases[winStart+i : winStart+i+rescueKmerLen]
		m := countMismatches(key, w)
		if m < res.bestMismatches {
			res.bestMismatches = m
			res.bestIndex = i
		} else if m == res.bestMismatches && res.bestMismatches <= RescueMaxSNPs {
			res.conflict = true
		}
	}
	return res
}

// RescuedChain is the synthetic SeedChain assembled when rescue succeeds.
type RescuedChain struct {
	Chain        *seedmap.SeedChain
	Mismatches1  int
	Mismatches2  int
}

// Rescue scans the reference interval derived from the anchor chain for
// mate B's two rescue k-mers, and on success synthesizes a chain for mate
// B anchored at the best-scoring offsets.
func Rescue(anchored *seedmap.SeedChain, mateB *sequences.Read, refSeq *reference.ReferenceSequence, insertParams *InsertSizeParameters, orientationNeedsFlip bool) (*RescuedChain, bool) {
	start, length := GetReferenceInterval(anchored, insertParams, mateB.Len())
	if length < rescueKmerLen {
		return nil, false
	}

	useRC := anchored.ReverseComplement != orientationNeedsFlip
	var refBases []reference.Base4
	if useRC {
		refBases = refSeq.ReverseComplementBases(start, uint64(length))
	} else {
		refBases = refSeq.Bases(start, uint64(length))
	}

	readLen := mateB.Len()
	modOffset := readLen % 4
	scanLength := length - readLen
	if alt := length - rescueKmerLen - modOffset; alt < scanLength {
		scanLength = alt
	}
	if scanLength <= 0 {
		return nil, false
	}
	refWin2Start := length - scanLength - rescueKmerLen - modOffset
	if refWin2Start < 0 {
		return nil, false
	}

	key1, key2, ok1, ok2 := GetRescueKmers(mateB.Bases)
	r1 := scanKey(key1, ok1, refBases, scanLength, 0)
	r2 := scanKey(key2, ok2, refBases, scanLength, refWin2Start)

	conflict := r1.conflict || r2.conflict
	if ok1 && ok2 && r1.bestIndex != r2.bestIndex {
		conflict = true
		if r2.bestMismatches < r1.bestMismatches {
			r1.bestIndex = r2.bestIndex
		} else {
			r2.bestIndex = r1.bestIndex
		}
	}

	if r1.bestMismatches > RescueMaxSNPs && r2.bestMismatches > RescueMaxSNPs {
		return nil, false
	}

	winOffset, winIsKey2 := r1.bestIndex, false
	if r2.bestMismatches < r1.bestMismatches {
		winOffset, winIsKey2 = refWin2Start+r2.bestIndex, true
	}
	firstRef, lastRef := projectFullReadBounds(start, uint64(length), winOffset, winIsKey2, readLen, modOffset, useRC)

	chain := &seedmap.SeedChain{ReverseComplement: !anchored.ReverseComplement != orientationNeedsFlip}
	chain.PerfectAlignment = !conflict
	chain.Extra = anchored.Extra
	chain.RandomSamplesOnly = anchored.RandomSamplesOnly
	chain.FirstReadBase = 0
	chain.LastReadBase = readLen - 1
	chain.Coverage = readLen
	chain.FirstRefBase = firstRef
	chain.LastRefBase = lastRef

	return &RescuedChain{Chain: chain, Mismatches1: r1.bestMismatches, Mismatches2: r2.bestMismatches}, true
}

// projectFullReadBounds extrapolates the reference span the whole read would
// cover, given the winning 32-base rescue window's position within the
// scanned interval [intervalStart, intervalStart+intervalLen). winIsKey2
// selects whether that window anchors mate B's last rescueKmerLen bases
// (tailLen-rescueKmerLen..tailLen-1) rather than its first.
func projectFullReadBounds(intervalStart, intervalLen uint64, winOffset int, winIsKey2 bool, readLen, modOffset int, useRC bool) (first, last uint64) {
	tailLen := readLen - modOffset
	readWinStart := 0
	if winIsKey2 {
		readWinStart = tailLen - rescueKmerLen
	}
	if !useRC {
		readZeroRef := int64(intervalStart) + int64(winOffset) - int64(readWinStart)
		return uint64(readZeroRef), uint64(readZeroRef) + uint64(readLen) - 1
	}
	// In the reverse-complement view, refBases[i] == refSeq.Base(intervalStart+intervalLen-1-i).Complement(),
	// so a window's local offset maps to a true reference coordinate that runs backwards with read position.
	readZeroRef := int64(intervalStart) + int64(intervalLen) - 1 - int64(winOffset) + int64(readWinStart)
	readLastRef := readZeroRef - int64(readLen) + 1
	return uint64(readLastRef), uint64(readZeroRef)
}
