package reference

import "testing"

func TestHitRoundTrip(t *testing.T) {
	r := NewHit(37, 0x3ABCDE, true, false, true, 0xDEADBEEF)
	if !r.IsHit() {
		t.Fatal("expected IsHit")
	}
	if r.Type() != RecordHit {
		t.Errorf("Type() = %v, want RecordHit", r.Type())
	}
	if got, want := r.ThreadID(), uint8(37); got != want {
		t.Errorf("ThreadID = %d, want %d", got, want)
	}
	if got, want := r.HashBits(), uint32(0x3ABCDE); got != want {
		t.Errorf("HashBits = %#x, want %#x", got, want)
	}
	if !r.IsExtendedSeed() {
		t.Error("expected IsExtendedSeed")
	}
	if r.IsLastInThread() {
		t.Error("expected IsLastInThread false")
	}
	if !r.IsReverseComplement() {
		t.Error("expected IsReverseComplement")
	}
	if got, want := r.Position(), uint32(0xDEADBEEF); got != want {
		t.Errorf("Position = %#x, want %#x", got, want)
	}
}

func TestEmptyRecordIsNotHit(t *testing.T) {
	r := NewEmpty()
	if r.IsHit() {
		t.Error("EMPTY record must not classify as a hit")
	}
	if r.Type() != RecordEmpty {
		t.Errorf("Type() = %v, want RecordEmpty", r.Type())
	}
}

func TestExtendRoundTrip(t *testing.T) {
	r := NewExtend(5, 0x123, false, true, false, 12, 0x2ABCD)
	if r.IsHit() {
		t.Fatal("EXTEND record must not classify as a hit")
	}
	if r.Type() != RecordExtend {
		t.Errorf("Type() = %v, want RecordExtend", r.Type())
	}
	if got, want := r.ExtensionLength(), uint64(12); got != want {
		t.Errorf("ExtensionLength = %d, want %d", got, want)
	}
	if got, want := r.ExtensionID(), uint64(0x2ABCD); got != want {
		t.Errorf("ExtensionID = %#x, want %#x", got, want)
	}
	if !r.IsLastInThread() {
		t.Error("expected IsLastInThread true")
	}
}

func TestChainMaskRoundTrip(t *testing.T) {
	r := NewChainBegMask(0xA5A5A5A5, 0x1FFFF)
	if !r.IsChainBegin() || !r.IsChainRecord() {
		t.Fatal("expected a chain-begin record")
	}
	if r.IsChainCon() {
		t.Error("a CHAIN_BEG record must not read as CHAIN_CON")
	}
	if got, want := r.FilterMask(), uint32(0xA5A5A5A5); got != want {
		t.Errorf("FilterMask = %#x, want %#x", got, want)
	}
	if got, want := r.ChainPointer(), uint64(0x1FFFF); got != want {
		t.Errorf("ChainPointer = %#x, want %#x", got, want)
	}
}

func TestChainListLanes(t *testing.T) {
	lanes := [4]uint8{0x11, 0x22, 0x33, 0x44}
	r := NewChainConList(lanes, 42)
	if !r.IsChainCon() {
		t.Fatal("expected a chain-continuation record")
	}
	for i, want := range lanes {
		if got := r.FilterListLane(i); got != want {
			t.Errorf("FilterListLane(%d) = %#x, want %#x", i, got, want)
		}
	}
	if got, want := r.ChainPointer(), uint64(42); got != want {
		t.Errorf("ChainPointer = %d, want %d", got, want)
	}
}

func TestMatchBitsIdentifiesSameKey(t *testing.T) {
	a := NewHit(9, 0x1234, true, false, false, 100)
	b := NewHit(9, 0x1234, true, true, true, 200)
	if a.MatchBits() != b.MatchBits() {
		t.Error("records sharing ThreadID/HashBits/EX must share MatchBits regardless of LF/RC/position")
	}
	c := NewHit(9, 0x1235, true, false, false, 100)
	if a.MatchBits() == c.MatchBits() {
		t.Error("records with differing HashBits must not share MatchBits")
	}
}

func TestIntervalSLRoundTrip(t *testing.T) {
	lo := NewIntervalSL(0, 0, false, false, false, 0x1234, 0x1AB)
	if lo.Type() != RecordIntervalSL || lo.IsMsb() {
		t.Fatal("expected a non-MSB INTERVAL_SL record")
	}
	hi := NewIntervalSL(0, 0, false, false, true, 0xAB, 0x1234)
	if hi.Type() != RecordIntervalSL || !hi.IsMsb() {
		t.Fatal("expected an MSB INTERVAL_SL record")
	}
}

func TestIntervalSLECarriesExliftAndMsb(t *testing.T) {
	r := NewIntervalSLE(0, 0, false, false, true, 3, 0, 0)
	if r.Type() != RecordIntervalSLE {
		t.Fatalf("Type() = %v, want RecordIntervalSLE", r.Type())
	}
	if !r.IsMsb() {
		t.Error("expected the MSB flag set")
	}
	if got, want := r.Exlift(), uint8(3); got != want {
		t.Errorf("Exlift = %d, want %d", got, want)
	}
}
