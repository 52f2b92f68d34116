package seedmap

const (
	smallQuantizer = 4
	largeQuantizer = 16
	maxDiameter    = 8
	maxRadius      = 5
	ageOld         = 9
	ageAncient     = 31
)

// diagonalEntry records the most recent read offset seen on a diagonal, used
// to age out diagonals that have gone quiet.
type diagonalEntry struct {
	diagonal       int64
	lastSeedOffset int
}

func (e diagonalEntry) age(currentReadOffset int) int {
	return currentReadOffset/largeQuantizer - e.lastSeedOffset/largeQuantizer
}

// SeedChain is an ordered collection of same-orientation seed-positions
// plausibly belonging to one linear alignment.
type SeedChain struct {
	ReverseComplement bool
	InitialDiagonal    int64
	PerfectAlignment   bool
	RandomSamplesOnly  bool
	Filtered           bool
	NeedRescue         bool
	Extra              bool

	FirstReadBase int
	LastReadBase  int
	FirstRefBase  uint64
	LastRefBase   uint64
	Coverage      int

	Positions []SeedPosition

	diagonalTable []diagonalEntry
	covered       []bool // per read-base coverage bitmap, sized to the read length
}

// clear resets a chain for reuse by the ChainBuilder's scratch pool.
func (c *SeedChain) clear(readLen int) {
	c.ReverseComplement = false
	c.InitialDiagonal = 0
	c.PerfectAlignment = true
	c.RandomSamplesOnly = true
	c.Filtered = false
	c.NeedRescue = false
	c.Extra = false
	c.FirstReadBase = 0
	c.LastReadBase = 0
	c.FirstRefBase = 0
	c.LastRefBase = 0
	c.Coverage = 0
	c.Positions = c.Positions[:0]
	c.diagonalTable = c.diagonalTable[:0]
	if cap(c.covered) < readLen {
		c.covered = make([]bool, readLen)
	} else {
		c.covered = c.covered[:readLen]
		for i := range c.covered {
			c.covered[i] = false
		}
	}
}

// ReadSpanLength is the number of read bases from the first to the last base
// covered by this chain, inclusive.
func (c *SeedChain) ReadSpanLength() int { return c.LastReadBase - c.FirstReadBase + 1 }

// projectedBounds returns the seed-position's ascending reference range
// (RefPos, LastRefBase) for both orientations; no reverse-complement
// projection is applied to reverse-complemented chains.
func (c *SeedChain) projectedBounds(p SeedPosition) (first, last uint64) {
	if !c.ReverseComplement {
		return p.RefPos, p.LastRefBase()
	}
	return p.RefPos, p.LastRefBase()
}

func (c *SeedChain) isEmpty() bool { return len(c.Positions) == 0 }

// accepts tests whether the incoming seed-position may be added to this
// chain (the five-step acceptance predicate).
func (c *SeedChain) accepts(p SeedPosition, rc bool) bool {
	if c.ReverseComplement != rc {
		return false
	}
	if c.isEmpty() {
		return true
	}
	if c.terminates(p.ReadOffset) {
		return false
	}
	if !c.passesInversionTest(p) {
		return false
	}
	if !c.passesDiameterTest(p) {
		return false
	}
	if !c.passesRadiusTest(p) {
		return false
	}
	return true
}

// terminates reports whether every diagonal currently tracked has aged past
// ageAncient relative to the incoming read offset; such a chain can never
// accept another seed.
func (c *SeedChain) terminates(readOffset int) bool {
	if len(c.diagonalTable) == 0 {
		return false
	}
	for _, e := range c.diagonalTable {
		if e.lastSeedOffset/largeQuantizer+ageAncient > readOffset/largeQuantizer {
			return false
		}
	}
	return true
}

// passesInversionTest checks that firstRefBase/lastRefBase would remain
// ordered consistently with the chain's orientation after a hypothetical
// insertion. FirstRefBase/LastRefBase are always stored as an
// ascending reference range regardless of orientation -- reverse-complement
// chains reverse which end reads as 5', not which end is numerically
// smaller -- so both orientation branches reduce to the same ascending
// check.
func (c *SeedChain) passesInversionTest(p SeedPosition) bool {
	newFirst, newLast := c.FirstRefBase, c.LastRefBase
	if p.RefPos < newFirst {
		newFirst = p.RefPos
	}
	if p.LastRefBase() > newLast {
		newLast = p.LastRefBase()
	}
	if !c.ReverseComplement {
		return newFirst <= newLast
	}
	return newFirst <= newLast
}

func (c *SeedChain) passesDiameterTest(p SeedPosition) bool {
	newDiag := p.Diagonal()
	for _, e := range c.diagonalTable {
		if e.age(p.ReadOffset) >= ageOld {
			continue
		}
		if abs64(newDiag/smallQuantizer-e.diagonal/smallQuantizer) >= maxDiameter {
			return false
		}
	}
	return true
}

func (c *SeedChain) passesRadiusTest(p SeedPosition) bool {
	if len(c.diagonalTable) == 0 {
		return true
	}
	newDiag := p.Diagonal() / smallQuantizer
	minDiag, maxDiag := c.diagonalTable[0].diagonal/smallQuantizer, c.diagonalTable[0].diagonal/smallQuantizer
	for _, e := range c.diagonalTable[1:] {
		d := e.diagonal / smallQuantizer
		if d < minDiag {
			minDiag = d
		}
		if d > maxDiag {
			maxDiag = d
		}
	}
	return abs64(newDiag-minDiag) <= maxRadius && abs64(newDiag-maxDiag) <= maxRadius
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// add inserts the seed-position, updating bookkeeping. The caller must have
// already confirmed acceptance via accepts.
func (c *SeedChain) add(p SeedPosition, rc, randomSample bool) {
	diag := p.Diagonal()
	if c.isEmpty() {
		c.ReverseComplement = rc
		c.InitialDiagonal = diag
		c.PerfectAlignment = true
		c.FirstReadBase = p.ReadOffset
		c.LastReadBase = p.LastReadBase()
		c.FirstRefBase = p.RefPos
		c.LastRefBase = p.LastRefBase()
	} else {
		c.PerfectAlignment = c.PerfectAlignment && diag == c.InitialDiagonal
		if p.ReadOffset < c.FirstReadBase {
			c.FirstReadBase = p.ReadOffset
		}
		if p.LastReadBase() > c.LastReadBase {
			c.LastReadBase = p.LastReadBase()
		}
		if p.RefPos < c.FirstRefBase {
			c.FirstRefBase = p.RefPos
		}
		if p.LastRefBase() > c.LastRefBase {
			c.LastRefBase = p.LastRefBase()
		}
	}
	c.RandomSamplesOnly = c.RandomSamplesOnly && randomSample
	c.Positions = append(c.Positions, p)
	c.updateCoverage(p)
	c.updateDiagonalTable(diag, p.ReadOffset)
}

func (c *SeedChain) updateCoverage(p SeedPosition) {
	for i := p.ReadOffset; i <= p.LastReadBase() && i < len(c.covered); i++ {
		if i < 0 {
			continue
		}
		if !c.covered[i] {
			c.covered[i] = true
			c.Coverage++
		}
	}
}

func (c *SeedChain) updateDiagonalTable(diag int64, readOffset int) {
	for i := range c.diagonalTable {
		if c.diagonalTable[i].diagonal == diag {
			c.diagonalTable[i].lastSeedOffset = readOffset
			c.evictAncient(readOffset)
			return
		}
	}
	c.diagonalTable = append(c.diagonalTable, diagonalEntry{diagonal: diag, lastSeedOffset: readOffset})
	c.evictAncient(readOffset)
}

func (c *SeedChain) evictAncient(readOffset int) {
	kept := c.diagonalTable[:0]
	for _, e := range c.diagonalTable {
		if e.lastSeedOffset/largeQuantizer+ageAncient > readOffset/largeQuantizer {
			kept = append(kept, e)
		}
	}
	c.diagonalTable = kept
}
