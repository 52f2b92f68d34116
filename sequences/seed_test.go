package sequences

import (
	"testing"

	"github.com/biomapper/seedmap/reference"
)

func TestComputeSeedOffsetsRoundTripLaw(t *testing.T) {
	const readLen, primaryBases = 100, 21
	offsets := ComputeSeedOffsets(readLen, primaryBases, 2, 0x01, 1)

	want := map[int]bool{}
	maxOffset := readLen - primaryBases
	for o := 0; o <= maxOffset; o += 2 {
		want[o] = true
	}
	want[maxOffset] = true

	got := map[int]bool{}
	for _, o := range offsets {
		got[o] = true
	}
	if len(got) != len(want) {
		t.Fatalf("got %d offsets, want %d", len(got), len(want))
	}
	for o := range want {
		if !got[o] {
			t.Errorf("missing expected offset %d", o)
		}
	}
	for o := range got {
		if !want[o] {
			t.Errorf("unexpected offset %d", o)
		}
	}
}

func TestComputeSeedOffsetsEmptyForShortRead(t *testing.T) {
	if offsets := ComputeSeedOffsets(10, 21, 2, 0x01, 1); offsets != nil {
		t.Errorf("offsets = %v, want nil for read shorter than primary window", offsets)
	}
}

func mkRead(bases string) *Read {
	b4 := make([]reference.Base4, len(bases))
	code := map[byte]reference.Base4{'A': reference.Base4A, 'C': reference.Base4C, 'G': reference.Base4G, 'T': reference.Base4T, 'N': reference.Base4N}
	for i := 0; i < len(bases); i++ {
		b4[i] = code[bases[i]]
	}
	return NewRead("r", b4, make([]byte, len(bases)), 0, PairFirst)
}

func TestSeedIsValidRejectsN(t *testing.T) {
	r := mkRead("ACGTNACGTACGTACGTACGT")
	s := NewSeed(r, true, 0, 21, 0)
	if s.IsValid() {
		t.Error("expected IsValid to reject a window containing N")
	}
}

func TestSeedReverseComplementMirrorsOffset(t *testing.T) {
	r := mkRead("ACGTACGTACGTACGTACGTA")
	s := NewSeed(r, true, 0, 21, 0)
	rc := s.GenerateReverseComplement()
	if rc.Forward() {
		t.Error("reverse complement seed should not be forward")
	}
	if rc.Offset() != 0 {
		t.Errorf("mirrored offset = %d, want 0 for a full-length window", rc.Offset())
	}
}

func TestGetExtendedDataPanicsPastBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected GetExtendedData to panic when the extension runs past the read")
		}
	}()
	r := mkRead("ACGTACGTACGTACGTACGTA")
	s := NewSeed(r, true, 0, 21, 4)
	s.GetExtendedData()
}

func TestPack2BitDistinguishesBaseOrder(t *testing.T) {
	a := Pack2Bit([]reference.Base4{reference.Base4A, reference.Base4C, reference.Base4G, reference.Base4T})
	b := Pack2Bit([]reference.Base4{reference.Base4T, reference.Base4G, reference.Base4C, reference.Base4A})
	if a == b {
		t.Error("Pack2Bit should distinguish different base orders")
	}
}
