package reference

import "testing"

func newTestConfig(squeeze64ths uint32) *HashtableConfig {
	return &HashtableConfig{TableSize64ths: squeeze64ths}
}

func TestGetHitsHomeBucketDirectHit(t *testing.T) {
	cfg := newTestConfig(64) // squeeze factor 1.0
	buckets := make([]Bucket, 4)
	const hash = uint64(0x1234) // hash>>19 == 0, lands at vba=0, bucket 0, thread 0
	buckets[0][0] = NewHit(0, uint32(hash), false, true, false, 12345)
	ht := NewHashtable(cfg, buckets)

	hits, intervals, err := ht.GetHits(hash, false)
	if err != nil {
		t.Fatalf("GetHits failed: %v", err)
	}
	if len(intervals) != 0 {
		t.Errorf("intervals = %v, want none", intervals)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if got, want := hits[0].Position(), uint32(12345); got != want {
		t.Errorf("Position = %d, want %d", got, want)
	}
}

func TestGetHitsNoMatchReturnsEmpty(t *testing.T) {
	cfg := newTestConfig(64)
	buckets := make([]Bucket, 4)
	buckets[0][0] = NewHit(0, 0xABCDEF, false, true, false, 1)
	ht := NewHashtable(cfg, buckets)

	hits, _, err := ht.GetHits(0x1234, false)
	if err != nil {
		t.Fatalf("GetHits failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %v, want none for a non-matching bucket", hits)
	}
}

func TestGetHitsProbesNeighborBucket(t *testing.T) {
	cfg := newTestConfig(64)
	buckets := make([]Bucket, bucketsPerBlock)
	const hash = uint64(0x1234)
	// home bucket 0 has no match; the match sits two buckets further into
	// the same 32KB probe block.
	buckets[2][0] = NewHit(0, uint32(hash), false, true, false, 555)
	ht := NewHashtable(cfg, buckets)

	hits, _, err := ht.GetHits(hash, false)
	if err != nil {
		t.Fatalf("GetHits failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Position() != 555 {
		t.Fatalf("hits = %v, want a single hit at position 555", hits)
	}
}

func TestGetHitsFollowsChainPointer(t *testing.T) {
	cfg := newTestConfig(64)
	buckets := make([]Bucket, 16)
	const hash = uint64(0x1234)

	// home bucket 0: a CHAIN_BEG_MASK whose filter matches everything,
	// pointing at bucket 5.
	buckets[0][0] = NewChainBegMask(0xFFFFFFFF, 5)
	// target bucket 5: a CHAIN_CON marker followed by the matching,
	// last-in-thread hit.
	buckets[5][0] = NewChainConMask(0, 0)
	buckets[5][1] = NewHit(0, uint32(hash), false, true, false, 9999)

	ht := NewHashtable(cfg, buckets)
	hits, _, err := ht.GetHits(hash, false)
	if err != nil {
		t.Fatalf("GetHits failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Position() != 9999 {
		t.Fatalf("hits = %v, want a single hit at position 9999 via the chain pointer", hits)
	}
}

func TestGetHitsResolvesTrailingInterval(t *testing.T) {
	cfg := newTestConfig(64)
	buckets := make([]Bucket, 4)
	const hash = uint64(0x1234)
	// an INTERVAL_SL0 record carries the same MatchBits machinery as a HIT
	// record and must be peeled off into an ExtendTableInterval rather than
	// surviving into the hit list.
	buckets[0][0] = NewIntervalSL(0, uint32(hash), false, true, false, 100, 7)
	ht := NewHashtable(cfg, buckets)

	hits, intervals, err := ht.GetHits(hash, false)
	if err != nil {
		t.Fatalf("GetHits failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %v, want none once the interval record is consumed", hits)
	}
	if len(intervals) != 1 {
		t.Fatalf("intervals = %d, want 1", len(intervals))
	}
	if intervals[0].Start != 100 || intervals[0].Length != 7 {
		t.Errorf("interval = %+v, want start=100 length=7", intervals[0])
	}
}

func TestBucketIndexStaysWithinBlockDuringProbe(t *testing.T) {
	blockStart := uint64(3) * bucketsPerBlock
	for i := uint64(0); i < bucketsPerBlock; i++ {
		idx := blockStart + i
		wrapped := blockStart + (i+7)%bucketsPerBlock
		if wrapped < blockStart || wrapped >= blockStart+bucketsPerBlock {
			t.Fatalf("probe neighbor %d for bucket %d escaped its 32KB block", wrapped, idx)
		}
	}
}
