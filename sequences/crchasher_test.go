package sequences

import (
	"testing"

	"github.com/biomapper/seedmap/reference"
)

// the 54-bit primary-seed polynomial and register width of the worked hashing example.
const primaryPolyExample = 0x2C991CE6A8DD55
const crcBitsExample = 54

func packString(s string) []reference.Base4 {
	code := map[byte]reference.Base4{'A': reference.Base4A, 'C': reference.Base4C, 'G': reference.Base4G, 'T': reference.Base4T}
	out := make([]reference.Base4, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = code[s[i]]
	}
	return out
}

func TestCrcHasherDeterministic(t *testing.T) {
	h := NewCrcHasher(primaryPolyExample, crcBitsExample)
	bases := packString("TAACCCTAACCCTAACCCTAA")
	a := h.Hash(bases, 0, len(bases))
	b := h.Hash(bases, 0, len(bases))
	if a != b {
		t.Errorf("Hash is not deterministic: %d != %d", a, b)
	}
	if a >= (uint64(1) << crcBitsExample) {
		t.Errorf("hash %d exceeds %d-bit register width", a, crcBitsExample)
	}
}

func TestCrcHasherDistinguishesContent(t *testing.T) {
	h := NewCrcHasher(primaryPolyExample, crcBitsExample)
	a := h.Hash(packString("TAACCCTAACCCTAACCCTAA"), 0, 21)
	b := h.Hash(packString("TAACCCTAACCCTAACCCTAC"), 0, 21)
	if a == b {
		t.Error("distinct 21-base windows hashed to the same value")
	}
}

func TestCrcHasherLengthPreserving(t *testing.T) {
	h := NewCrcHasher(primaryPolyExample, crcBitsExample)
	// "CC" repeated is a prefix of itself at multiple lengths; with no length
	// field the runs still land in different register states (0x55 vs 0x555).
	short := h.Hash(packString("CCCC"), 0, 4)
	long := h.Hash(packString("CCCCCC"), 0, 6)
	if short == long {
		t.Error("hash collapsed two different-length runs sharing a prefix")
	}
}

func TestHashBitsMatchesHash(t *testing.T) {
	h := NewCrcHasher(primaryPolyExample, crcBitsExample)
	bases := packString("TAACCCTAACCCTAACCCTAA")
	viaBases := h.Hash(bases, 0, len(bases))
	packed := Pack2Bit(bases)
	viaPacked := h.HashBits(packed, len(bases))
	if viaBases != viaPacked {
		t.Errorf("Hash and HashBits disagree: %d != %d", viaBases, viaPacked)
	}
}

func TestHashWordMatchesHashBitsForRawBits(t *testing.T) {
	h := NewCrcHasher(primaryPolyExample, crcBitsExample)
	bases := packString("TAAC")
	packed := Pack2Bit(bases)
	viaBits := h.HashBits(packed, len(bases))
	viaWord := h.HashWord(packed, 2*len(bases))
	if viaBits != viaWord {
		t.Errorf("HashBits and HashWord disagree on the same raw bit pattern: %d != %d", viaBits, viaWord)
	}
}
