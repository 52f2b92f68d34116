// Package sequences holds the per-read types shared across the pipeline:
// the decoded FASTQ read, the seed extracted from it, and the
// length-preserving CRC hasher used to key the hashtable.
package sequences

import "github.com/biomapper/seedmap/reference"

// PairPosition identifies which mate of a pair a Read came from.
type PairPosition uint8

const (
	PairUnknown PairPosition = iota
	PairFirst
	PairSecond
)

// Read is one decoded sequencer read: its name, 4-bit IUPAC bases (forward
// and precomputed reverse complement), base qualities, and pairing info.
type Read struct {
	Name         string
	Bases        []reference.Base4
	RCBases      []reference.Base4
	Qualities    []byte
	ID           uint64
	PairPosition PairPosition
}

// NewRead builds a Read from forward-strand bases, precomputing the reverse
// complement once so downstream seeding never recomputes it.
func NewRead(name string, bases []reference.Base4, qualities []byte, id uint64, pos PairPosition) *Read {
	rc := make([]reference.Base4, len(bases))
	for i, b := range bases {
		rc[len(bases)-1-i] = b.Complement()
	}
	return &Read{Name: name, Bases: bases, RCBases: rc, Qualities: qualities, ID: id, PairPosition: pos}
}

// Len returns the read length in bases.
func (r *Read) Len() int { return len(r.Bases) }
