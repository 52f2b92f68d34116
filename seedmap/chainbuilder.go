package seedmap

// ChainBuilder accumulates seed-positions into SeedChains for one read and
// filters them down to the chains worth aligning. It is owned by a single
// worker and reused across reads via Reset, so chain storage only grows, it
// never reallocates per read (the "logical size" note of the concurrency
// model).
type ChainBuilder struct {
	ChainFilterRatio float64

	readLen int
	chains  []*SeedChain // storage, reused across reads; only chains[:size] are live
	size    int
}

// NewChainBuilder constructs a builder with the given filtering ratio.
func NewChainBuilder(chainFilterRatio float64) *ChainBuilder {
	return &ChainBuilder{ChainFilterRatio: chainFilterRatio}
}

// Reset prepares the builder for a new read of the given length, reusing
// previously allocated SeedChain storage.
func (b *ChainBuilder) Reset(readLen int) {
	b.readLen = readLen
	b.size = 0
}

func (b *ChainBuilder) allocChain() *SeedChain {
	if b.size < len(b.chains) {
		c := b.chains[b.size]
		c.clear(b.readLen)
		b.size++
		return c
	}
	c := &SeedChain{}
	c.clear(b.readLen)
	b.chains = append(b.chains, c)
	b.size++
	return c
}

// Chains returns the live chains built so far.
func (b *ChainBuilder) Chains() []*SeedChain { return b.chains[:b.size] }

// AddSeedPosition offers a seed-position to every existing chain that
// accepts it (a seed may join more than one chain), and allocates a new
// chain if none accept.
func (b *ChainBuilder) AddSeedPosition(p SeedPosition, rc, randomSample bool) {
	accepted := false
	for _, c := range b.Chains() {
		if c.accepts(p, rc) {
			c.add(p, rc, randomSample)
			accepted = true
		}
	}
	if !accepted {
		c := b.allocChain()
		c.add(p, rc, randomSample)
	}
}

// AddSeedChain installs a chain built outside the normal seed loop (e.g. a
// rescued chain) directly into the live set.
func (b *ChainBuilder) AddSeedChain(c *SeedChain) {
	if b.size < len(b.chains) {
		b.chains[b.size] = c
	} else {
		b.chains = append(b.chains, c)
	}
	b.size++
}

// FilterChains marks dominated chains Filtered: a chain is
// dominated when some other chain's coverage dominates its endpoints and
// magnitude, it is not itself Extra, and it has at least one non-random
// sample seed.
func (b *ChainBuilder) FilterChains() {
	chains := b.Chains()
	if len(chains) == 0 {
		return
	}
	maxCoverage := 0
	for _, c := range chains {
		if c.Coverage > maxCoverage {
			maxCoverage = c.Coverage
		}
	}
	// maxCovBeg/maxCovEnd are drawn from whichever chain(s) achieve
	// maxCoverage; a chain with the max coverage trivially cannot dominate
	// itself out, so any chain achieving it serves as the reference span.
	var maxCovBeg, maxCovEnd int
	found := false
	for _, c := range chains {
		if c.Coverage == maxCoverage {
			if !found || c.FirstReadBase < maxCovBeg {
				maxCovBeg = c.FirstReadBase
			}
			if !found || c.LastReadBase > maxCovEnd {
				maxCovEnd = c.LastReadBase
			}
			found = true
		}
	}

	for _, c := range chains {
		if c.Extra || c.RandomSamplesOnly || c.Coverage == maxCoverage {
			continue
		}
		dominated := maxCovBeg <= c.FirstReadBase+c.Coverage/4 &&
			maxCovEnd >= c.LastReadBase-c.Coverage/4 &&
			maxCoverage >= int(b.ChainFilterRatio*float64(c.Coverage))
		if dominated {
			c.Filtered = true
		}
	}
}
