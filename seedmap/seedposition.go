// Package seedmap implements the chain-building and per-read mapping
// components: turning a stream of hashtable hits for a read's seeds
// into a set of candidate SeedChains, then filtering them down to the chains
// worth aligning.
package seedmap

// SeedPosition is one hashtable hit projected onto a single diagonal: the
// read offset and reference position of a seed's first base, on a given
// strand.
type SeedPosition struct {
	ReadOffset int
	RefPos     uint64
	ReverseComplement bool
	SeedLength int
}

// Diagonal is RefPos - ReadOffset: constant along a single ungapped
// alignment, used to group seed hits that plausibly belong to the same
// chain.
func (p SeedPosition) Diagonal() int64 {
	return int64(p.RefPos) - int64(p.ReadOffset)
}

// FirstProjection projects the seed's reference start back to read offset 0
// along its diagonal, i.e. the reference position a chain beginning at read
// offset 0 would have.
func (p SeedPosition) FirstProjection() int64 {
	return int64(p.RefPos) - int64(p.ReadOffset)
}

// LastReadBase and LastRefBase describe the final base covered by this seed.
func (p SeedPosition) LastReadBase() int    { return p.ReadOffset + p.SeedLength - 1 }
func (p SeedPosition) LastRefBase() uint64  { return p.RefPos + uint64(p.SeedLength) - 1 }
