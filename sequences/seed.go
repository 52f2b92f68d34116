package sequences

import "github.com/biomapper/seedmap/reference"

// Seed is a fixed-offset window of a Read used to query the hashtable:
// a run of `primaryBases` unambiguous bases for the primary CRC, optionally
// extended on both wings for the secondary (extended) CRC.
type Seed struct {
	read      *Read
	forward   bool // false means the seed is drawn from the read's reverse complement
	offset    int  // offset of the primary window within the (possibly rc'd) base slice
	primary   int  // primary window length in bases
	extension int  // total extension length (split evenly across both wings)
}

// NewSeed builds a seed at the given offset of read (or its reverse
// complement), with a primary window of primaryBases and a total extension
// of extensionBases split evenly between the two wings.
func NewSeed(read *Read, forward bool, offset, primaryBases, extensionBases int) *Seed {
	return &Seed{read: read, forward: forward, offset: offset, primary: primaryBases, extension: extensionBases}
}

func (s *Seed) bases() []reference.Base4 {
	if s.forward {
		return s.read.Bases
	}
	return s.read.RCBases
}

// IsValid reports whether every base spanned by the primary window is an
// unambiguous A/C/G/T call; a seed touching N or an ambiguity code can never
// hash deterministically and must be skipped.
func (s *Seed) IsValid() bool {
	bases := s.bases()
	if s.offset < 0 || s.offset+s.primary > len(bases) {
		return false
	}
	for i := 0; i < s.primary; i++ {
		switch bases[s.offset+i] {
		case reference.Base4A, reference.Base4C, reference.Base4G, reference.Base4T:
		default:
			return false
		}
	}
	return true
}

// GetPrimaryData returns the seed's primary window.
func (s *Seed) GetPrimaryData() []reference.Base4 {
	if !s.IsValid() {
		panic("sequences: GetPrimaryData on invalid seed")
	}
	return s.bases()[s.offset : s.offset+s.primary]
}

// GetExtendedData returns the seed's primary window plus both extension
// wings, split evenly (an odd extension puts the extra base on the trailing
// wing). It panics if the extended window runs past either end of the read,
// since extension offsets are chosen by the caller from the read length.
func (s *Seed) GetExtendedData() []reference.Base4 {
	left := s.extension / 2
	right := s.extension - left
	bases := s.bases()
	begin := s.offset - left
	end := s.offset + s.primary + right
	if begin < 0 || end > len(bases) {
		panic("sequences: GetExtendedData past read bounds")
	}
	return bases[begin:end]
}

// GetSeedOffsets returns the read-coordinate offsets of the primary window's
// first and last base.
func (s *Seed) GetSeedOffsets() (first, last int) {
	return s.offset, s.offset + s.primary - 1
}

// GenerateReverseComplement returns the seed at the mirrored offset on the
// opposite strand of the same read, used to query both orientations of the
// hashtable from a single pass over seed offsets.
func (s *Seed) GenerateReverseComplement() *Seed {
	readLen := len(s.read.Bases)
	mirroredOffset := readLen - s.offset - s.primary
	return &Seed{read: s.read, forward: !s.forward, offset: mirroredOffset, primary: s.primary, extension: s.extension}
}

// Read returns the underlying read.
func (s *Seed) Read() *Read { return s.read }

// Forward reports whether this seed reads the read's forward strand.
func (s *Seed) Forward() bool { return s.forward }

// ComputeSeedOffsets returns the seed start offsets for a read of length
// readLen with primary window length primaryBases: offset o in
// [0, readLen-primaryBases] is selected when ((pattern >> (o mod period)) &
// 1) == 1, OR unconditionally when o is among the last forceLastN offsets
// (o+primaryBases+forceLastN > readLen) -- this guarantees the tail of the
// read is always seeded even when the stride pattern would otherwise skip
// it.
func ComputeSeedOffsets(readLen, primaryBases int, period uint64, pattern uint64, forceLastN int) []int {
	maxOffset := readLen - primaryBases
	if maxOffset < 0 {
		return nil
	}
	var offsets []int
	for o := 0; o <= maxOffset; o++ {
		selected := (pattern>>(uint64(o)%period))&1 == 1
		forced := o+primaryBases+forceLastN > readLen
		if selected || forced {
			offsets = append(offsets, o)
		}
	}
	return offsets
}

// Pack2Bit packs a run of unambiguous bases into a 2-bit-per-base word,
// most-significant base first, for feeding to CrcHasher.
func Pack2Bit(bases []reference.Base4) uint64 {
	var v uint64
	for _, b := range bases {
		v = (v << 2) | base2(b)
	}
	return v
}

// Offset returns the seed's window offset within its (possibly
// reverse-complemented) base slice.
func (s *Seed) Offset() int { return s.offset }
