package reference

// Base4 is a 4-bit IUPAC-packed base: A=1, C=2, G=4, T=8, N=0xF, with
// ambiguity codes as bitwise unions (e.g. R = A|G = 5); 0 is padding.
type Base4 uint8

const (
	Base4N Base4 = 0xF
	Base4A Base4 = 0x1
	Base4C Base4 = 0x2
	Base4G Base4 = 0x4
	Base4T Base4 = 0x8
)

// complement4 maps a 4-bit base to its Watson-Crick complement; ambiguity
// codes complement bit-for-bit (A<->T, C<->G).
var complement4 = [16]Base4{
	0x0: 0x0, 0x1: 0x8, 0x2: 0x4, 0x3: 0xC,
	0x4: 0x2, 0x5: 0xA, 0x6: 0x6, 0x7: 0xE,
	0x8: 0x1, 0x9: 0x9, 0xA: 0x5, 0xB: 0xD,
	0xC: 0x3, 0xD: 0xB, 0xE: 0x7, 0xF: 0xF,
}

func (b Base4) Complement() Base4 { return complement4[b&0xF] }

// ReferenceSequence is the packed reference image: a flat run of 4-bit
// bases across all contigs, with each contig's begin/end trim regions
// pre-masked to N so that seeds are never generated there. Two bases are
// packed per byte, low nibble first.
type ReferenceSequence struct {
	packed    []byte
	numBases  uint64
	sequences []SequenceDescriptor
}

// NewReferenceSequence wraps a packed byte slice with its contig layout,
// masking begin/end trim regions of each contig to N in place.
func NewReferenceSequence(packed []byte, numBases uint64, sequences []SequenceDescriptor) *ReferenceSequence {
	rs := &ReferenceSequence{packed: packed, numBases: numBases, sequences: sequences}
	for _, sd := range sequences {
		rs.maskRange(sd.SeqStart, uint64(sd.BegTrim))
		if sd.EndTrim > 0 {
			rs.maskRange(sd.SeqStart+sd.SeqLen-uint64(sd.EndTrim), uint64(sd.EndTrim))
		}
	}
	return rs
}

func (rs *ReferenceSequence) maskRange(start, length uint64) {
	for i := uint64(0); i < length; i++ {
		rs.setBase(start+i, Base4N)
	}
}

func (rs *ReferenceSequence) setBase(pos uint64, b Base4) {
	byteIdx := pos / 2
	if pos%2 == 0 {
		rs.packed[byteIdx] = (rs.packed[byteIdx] &^ 0x0F) | byte(b)
	} else {
		rs.packed[byteIdx] = (rs.packed[byteIdx] &^ 0xF0) | byte(b)<<4
	}
}

// NumBases is the total length of the packed sequence, across all contigs.
func (rs *ReferenceSequence) NumBases() uint64 { return rs.numBases }

// Base returns the 4-bit base at the given 0-based position.
func (rs *ReferenceSequence) Base(pos uint64) Base4 {
	b := rs.packed[pos/2]
	if pos%2 == 0 {
		return Base4(b & 0x0F)
	}
	return Base4(b >> 4)
}

// Bases returns the bases in [start, start+length), forward strand.
func (rs *ReferenceSequence) Bases(start, length uint64) []Base4 {
	out := make([]Base4, length)
	for i := range out {
		out[i] = rs.Base(start + uint64(i))
	}
	return out
}

// ReverseComplementBases returns the reverse complement of [start,
// start+length), i.e. the bases as they would read on the opposite strand.
func (rs *ReferenceSequence) ReverseComplementBases(start, length uint64) []Base4 {
	out := make([]Base4, length)
	for i := range out {
		out[i] = rs.Base(start + length - 1 - uint64(i)).Complement()
	}
	return out
}

// SequenceAt returns the contig descriptor containing pos, or false if pos
// is out of range.
func (rs *ReferenceSequence) SequenceAt(pos uint64) (SequenceDescriptor, bool) {
	for _, sd := range rs.sequences {
		if pos >= sd.SeqStart && pos < sd.SeqStart+sd.SeqLen {
			return sd, true
		}
	}
	return SequenceDescriptor{}, false
}
