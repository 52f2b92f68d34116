package seedmap

import "testing"

func TestAddSeedPositionStartsNewChainWhenNoneAccept(t *testing.T) {
	b := NewChainBuilder(2.0)
	b.Reset(200)
	b.AddSeedPosition(SeedPosition{ReadOffset: 0, RefPos: 1000, SeedLength: 21}, false, false)
	b.AddSeedPosition(SeedPosition{ReadOffset: 0, RefPos: 50000, SeedLength: 21}, false, false)
	if len(b.Chains()) != 2 {
		t.Fatalf("len(Chains()) = %d, want 2 distinct chains for unrelated diagonals", len(b.Chains()))
	}
}

func TestAddSeedPositionJoinsExistingChain(t *testing.T) {
	b := NewChainBuilder(2.0)
	b.Reset(200)
	b.AddSeedPosition(SeedPosition{ReadOffset: 0, RefPos: 1000, SeedLength: 21}, false, false)
	b.AddSeedPosition(SeedPosition{ReadOffset: 21, RefPos: 1021, SeedLength: 21}, false, false)
	chains := b.Chains()
	if len(chains) != 1 {
		t.Fatalf("len(Chains()) = %d, want 1 merged chain", len(chains))
	}
	if len(chains[0].Positions) != 2 {
		t.Errorf("chain has %d positions, want 2", len(chains[0].Positions))
	}
}

func TestResetReusesChainStorage(t *testing.T) {
	b := NewChainBuilder(2.0)
	b.Reset(200)
	b.AddSeedPosition(SeedPosition{ReadOffset: 0, RefPos: 1000, SeedLength: 21}, false, false)
	b.AddSeedPosition(SeedPosition{ReadOffset: 0, RefPos: 50000, SeedLength: 21}, false, false)
	firstChain := b.Chains()[0]

	b.Reset(150)
	if len(b.Chains()) != 0 {
		t.Fatalf("Chains() after Reset = %d, want 0", len(b.Chains()))
	}
	b.AddSeedPosition(SeedPosition{ReadOffset: 0, RefPos: 1000, SeedLength: 21}, false, false)
	if b.Chains()[0] != firstChain {
		t.Error("expected Reset to reuse the same underlying SeedChain storage")
	}
	if len(firstChain.Positions) != 1 {
		t.Errorf("reused chain has %d stale positions, want 1 after clear", len(firstChain.Positions))
	}
}

func TestFilterChainsDominatesLowCoverageOverlap(t *testing.T) {
	b := NewChainBuilder(2.0)
	b.Reset(200)
	// a strong, well-covered chain spanning read bases [0,80]...
	for off := 0; off <= 79; off += 20 {
		b.AddSeedPosition(SeedPosition{ReadOffset: off, RefPos: uint64(1000 + off), SeedLength: 21}, false, false)
	}
	// ...and a weak, single-seed chain on an unrelated diagonal, within the
	// strong chain's read span, whose coverage is far below the dominance ratio.
	b.AddSeedPosition(SeedPosition{ReadOffset: 10, RefPos: 90000, SeedLength: 21}, false, false)

	b.FilterChains()
	var strong, weak *SeedChain
	for _, c := range b.Chains() {
		if c.Coverage > 21 {
			strong = c
		} else {
			weak = c
		}
	}
	if strong == nil || weak == nil {
		t.Fatal("expected one strong and one weak chain")
	}
	if strong.Filtered {
		t.Error("the highest-coverage chain must never be filtered out")
	}
	if !weak.Filtered {
		t.Error("expected the dominated, low-coverage chain to be marked Filtered")
	}
}

func TestFilterChainsSparesRandomSamplesOnly(t *testing.T) {
	b := NewChainBuilder(2.0)
	b.Reset(200)
	for off := 0; off <= 79; off += 20 {
		b.AddSeedPosition(SeedPosition{ReadOffset: off, RefPos: uint64(1000 + off), SeedLength: 21}, false, false)
	}
	b.AddSeedPosition(SeedPosition{ReadOffset: 10, RefPos: 90000, SeedLength: 21}, false, true)

	b.FilterChains()
	for _, c := range b.Chains() {
		if c.RandomSamplesOnly && c.Filtered {
			t.Error("a random-samples-only chain must never be marked Filtered")
		}
	}
}
