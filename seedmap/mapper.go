package seedmap

import (
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"

	"github.com/biomapper/seedmap/reference"
	"github.com/biomapper/seedmap/sequences"
)

const maxDirectIntervalSamples = 16

// Mapper drives seed generation, hashtable querying, extension recursion,
// and interval sampling for one read, feeding accepted seed-positions into a
// ChainBuilder. A Mapper is worker-owned scratch, reused across reads.
type Mapper struct {
	Opts            Opts
	Hashtable       *reference.Hashtable
	ExtendTable     *reference.ExtendTable
	PrimaryHasher   *sequences.CrcHasher
	SecondaryHasher *sequences.CrcHasher

	// counters, reset per read by MapRead
	ExtensionFailures int
	LongestSeedLength int
	bestIntervalLen   int
	bestIntervalSeed  int
}

// NewMapper builds a Mapper over shared, read-only reference/hashtable data.
func NewMapper(opts Opts, ht *reference.Hashtable, et *reference.ExtendTable, primary, secondary *sequences.CrcHasher) *Mapper {
	return &Mapper{Opts: opts, Hashtable: ht, ExtendTable: et, PrimaryHasher: primary, SecondaryHasher: secondary}
}

// MapRead generates seeds across read and feeds every resulting
// seed-position into builder.
func (m *Mapper) MapRead(read *sequences.Read, builder *ChainBuilder) {
	m.ExtensionFailures = 0
	m.LongestSeedLength = 0
	m.bestIntervalLen = -1
	m.bestIntervalSeed = 0

	readLen := read.Len()
	offsets := sequences.ComputeSeedOffsets(readLen, m.Opts.PrimarySeedBases, m.Opts.SeedPeriod, m.Opts.SeedPattern, m.Opts.ForceLastN)
	for _, o := range offsets {
		m.processOffset(read, o, builder)
	}
}

func (m *Mapper) processOffset(read *sequences.Read, offset int, builder *ChainBuilder) {
	forwardSeed := sequences.NewSeed(read, true, offset, m.Opts.PrimarySeedBases, 0)
	if !forwardSeed.IsValid() {
		return
	}
	rcSeed := forwardSeed.GenerateReverseComplement()
	if !rcSeed.IsValid() {
		return
	}
	forwardPacked := sequences.Pack2Bit(forwardSeed.GetPrimaryData())
	rcPacked := sequences.Pack2Bit(rcSeed.GetPrimaryData())

	// Canonicalize: hash whichever orientation is numerically smaller, and
	// tag the resulting chain with that orientation.
	seed, packed, rc := forwardSeed, forwardPacked, false
	if rcPacked < forwardPacked {
		seed, packed, rc = rcSeed, rcPacked, true
	}

	h := m.PrimaryHasher.HashBits(packed, m.Opts.PrimarySeedBases)
	hits, intervals, err := m.Hashtable.GetHits(h, false)
	if err != nil {
		log.Error.Printf("seedmap: getHits(primary) failed at offset %d: %v", offset, err)
		return
	}
	m.emitHits(hits, seed, offset, rc, 0, builder)
	m.extend(hits, intervals, h, seed, offset, rc, 0, builder)

	if m.Opts.PrimarySeedBases > m.LongestSeedLength {
		m.LongestSeedLength = m.Opts.PrimarySeedBases
	}
}

// emitHits converts every HIT record into a chain seed-position.
func (m *Mapper) emitHits(hits []reference.HashRecord, seed *sequences.Seed, offset int, rc bool, halfExtension int, builder *ChainBuilder) {
	seedLen := m.Opts.PrimarySeedBases + 2*halfExtension
	for _, rec := range hits {
		if rec.Type() != reference.RecordHit {
			continue
		}
		builder.AddSeedPosition(SeedPosition{
			ReadOffset:        offset - halfExtension,
			RefPos:            uint64(rec.Position()),
			ReverseComplement: rc,
			SeedLength:        seedLen,
		}, rc, false)
	}
}

// extend recurses through EXTEND records, and samples any reassembled
// extend-table interval once the chain of extensions bottoms out.
func (m *Mapper) extend(hits []reference.HashRecord, intervals []reference.ExtendTableInterval, h uint64, seed *sequences.Seed, offset int, rc bool, halfExtension int, builder *ChainBuilder) {
	for _, iv := range intervals {
		m.sampleInterval(iv, seed, offset, rc, halfExtension, builder)
	}
	for _, rec := range hits {
		if rec.Type() != reference.RecordExtend {
			continue
		}
		m.extendOne(rec, h, seed, offset, rc, halfExtension, builder)
	}
}

func (m *Mapper) extendOne(rec reference.HashRecord, h uint64, seed *sequences.Seed, offset int, rc bool, halfExtension int, builder *ChainBuilder) {
	extLen := int(rec.ExtensionLength())
	newHalf := halfExtension + extLen/2
	extSeed := sequences.NewSeed(seed.Read(), seed.Forward(), seed.Offset(), m.Opts.PrimarySeedBases, 2*newHalf)
	if !recoverable(extSeed) {
		m.ExtensionFailures++
		return
	}
	wing := sequences.Pack2Bit(extSeed.GetExtendedData())
	extBin := (h >> (m.PrimaryHasher.Bits() - 7)) & 0x7F
	extKey := (extBin << 42) | (rec.ExtensionID() << 24) | (wing & 0xFFFFFF)
	extendedH := m.SecondaryHasher.HashWord(extKey, 49) // extBin(7) | extensionId(18) | wingBits(24)
	extendedH ^= addressSegmentMask(h, m.PrimaryHasher.Bits(), m.SecondaryHasher.Bits())

	hits, intervals, err := m.Hashtable.GetHits(extendedH, true)
	if err != nil {
		log.Error.Printf("seedmap: getHits(extended) failed: %v", err)
		return
	}
	seedLen := m.Opts.PrimarySeedBases + 2*newHalf
	if seedLen > m.LongestSeedLength {
		m.LongestSeedLength = seedLen
	}
	m.emitHits(hits, seed, offset, rc, newHalf, builder)
	m.extend(hits, intervals, extendedH, seed, offset, rc, newHalf, builder)
}

// recoverable guards against an extension reaching past the read. This is
// treated as a recoverable per-seed precondition failure rather than a
// fatal error: the mapper just drops this extension branch.
func recoverable(s *sequences.Seed) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = s.GetExtendedData()
	return true
}

// addressSegmentMask combines the high bits of H that lie above each
// hasher's register width, so extended queries stay addressed within the
// same memory segment as their originating primary hash.
func addressSegmentMask(h uint64, primaryBits, secondaryBits uint) uint64 {
	return (h >> primaryBits) ^ (h >> secondaryBits)
}

// sampleInterval emits seed-positions for an extend-table interval: every
// member if it's small, otherwise 16 deterministically sampled members
// (farm-hashed by interval start and sample index, so repeated queries for
// the same interval always pick the same sample set).
func (m *Mapper) sampleInterval(iv reference.ExtendTableInterval, seed *sequences.Seed, offset int, rc bool, halfExtension int, builder *ChainBuilder) {
	n := int(iv.Length)
	cappedLen := n
	if cappedLen > maxDirectIntervalSamples {
		cappedLen = maxDirectIntervalSamples
	}
	seedLen := m.Opts.PrimarySeedBases + 2*halfExtension
	if m.bestIntervalLen < 0 || cappedLen < m.bestIntervalLen || (cappedLen == m.bestIntervalLen && seedLen < m.bestIntervalSeed) {
		m.bestIntervalLen = cappedLen
		m.bestIntervalSeed = seedLen
	}

	emit := func(idx int) {
		if idx < 0 || idx >= m.ExtendTable.Len() {
			return
		}
		builder.AddSeedPosition(SeedPosition{
			ReadOffset:        offset - halfExtension,
			RefPos:            uint64(m.ExtendTable.Position(idx)),
			ReverseComplement: m.ExtendTable.IsRC(idx) != rc,
			SeedLength:        seedLen,
		}, m.ExtendTable.IsRC(idx) != rc, true)
	}

	if n <= maxDirectIntervalSamples {
		for i := 0; i < n; i++ {
			emit(int(iv.Start) + i)
		}
		return
	}
	for s := 0; s < maxDirectIntervalSamples; s++ {
		sampleHash := farm.Hash64WithSeed(nil, iv.Start+uint64(s))
		emit(int(iv.Start) + int(sampleHash%uint64(n)))
	}
}
