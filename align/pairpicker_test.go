package align

import "testing"

func TestComputeMapqMonotoneInSecondBest(t *testing.T) {
	best := 300
	prevMapq := 1 << 30
	for secondBest := 0; secondBest <= best; secondBest += 10 {
		mapq := computeMapq(36, best, secondBest, 100)
		if mapq > prevMapq {
			t.Fatalf("mapq increased as secondBest rose: secondBest=%d mapq=%d prevMapq=%d", secondBest, mapq, prevMapq)
		}
		prevMapq = mapq
	}
}

func TestComputeMapqZeroWhenTied(t *testing.T) {
	if got := computeMapq(36, 200, 200, 100); got != 0 {
		t.Errorf("computeMapq(tied) = %d, want 0", got)
	}
}

func TestComputeMapqCapped(t *testing.T) {
	if got := computeMapq(36, 1_000_000, 0, 100); got > 60 {
		t.Errorf("computeMapq() = %d, exceeds cap of 60", got)
	}
}

func TestUpdateEndMapqMonotoneInSubCount(t *testing.T) {
	cfg := Config{SnpCost: 36, MapqMinLen: 50, MinScore: 0}
	prevMapq := 1 << 30
	for subCount := 1; subCount <= 64; subCount *= 2 {
		mapq := UpdateEndMapq(cfg, 100, 300, 50, subCount, nil, 0)
		if mapq > prevMapq {
			t.Fatalf("mapq increased as subCount rose: subCount=%d mapq=%d prevMapq=%d", subCount, mapq, prevMapq)
		}
		prevMapq = mapq
	}
}

func TestForceMapq0(t *testing.T) {
	cfg := Config{SampleMapq0: 1}
	p := Pair{HasOnlyRandomSamples: true}
	if !ForceMapq0(cfg, &p) {
		t.Error("expected ForceMapq0 to trigger for a random-sample-only pair at sampleMapq0=1")
	}
	p2 := Pair{IsExtra: true}
	if ForceMapq0(cfg, &p2) {
		t.Error("expected ForceMapq0 to not trigger for an extra pair at sampleMapq0=1")
	}
	cfg2 := Config{SampleMapq0: 2}
	if !ForceMapq0(cfg2, &p2) {
		t.Error("expected ForceMapq0 to trigger for an extra pair at sampleMapq0=2")
	}
}

func TestBestPairPicksHighestScore(t *testing.T) {
	pairs := []Pair{{Score: 10}, {Score: 50}, {Score: 20}}
	best, ok := BestPair(pairs)
	if !ok || best.Score != 50 {
		t.Fatalf("BestPair = %+v, ok=%v, want Score=50", best, ok)
	}
}

func TestBestPairSkipsBothUnmapped(t *testing.T) {
	pairs := []Pair{{A1: nil, A2: nil}}
	if _, ok := BestPair(pairs); ok {
		t.Error("expected no best pair when both mates are unmapped")
	}
}
