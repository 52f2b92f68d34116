package reference

import "github.com/grailbio/base/errors"

// addressing parameters shared by every hashtable, independent of config.
const (
	// maxWrapBytesLog2 bounds the probe neighborhood to one 32KB block so a
	// probe never wraps across the whole table.
	maxWrapBytesLog2 = 15
	bytesPerBlock    = 1 << maxWrapBytesLog2
	bucketsPerBlock  = bytesPerBlock / BucketBytes

	maxProbes = 8
)

// Hashtable is the bucket/probe/chain-resolution structure: given a
// seed hash it locates the home bucket, follows overflow chains, and
// reassembles extend-table intervals referenced from the tail of a bucket's
// hit list.
type Hashtable struct {
	cfg     *HashtableConfig
	buckets []Bucket
}

// NewHashtable wraps a flat bucket array (as mapped from hash_table.bin) with
// its configuration.
func NewHashtable(cfg *HashtableConfig, buckets []Bucket) *Hashtable {
	return &Hashtable{cfg: cfg, buckets: buckets}
}

// virtualByteAddress maps a seed hash to a byte offset in an idealized,
// unbounded table, biased by the squeeze factor so the real (smaller) table
// stays within its target occupancy.
func (ht *Hashtable) virtualByteAddress(hash uint64) uint64 {
	const addressBits = 35
	addr := (hash >> 19) & ((uint64(1) << addressBits) - 1)
	return uint64(float64(addr) * ht.cfg.SqueezeFactor())
}

func bucketIndexOf(vba uint64) uint64 { return vba >> 6 }
func threadIDOf(vba uint64) uint8     { return uint8((vba >> 3) & 0x3F) }

// matchBits computes the 30-bit ThreadId∥HashBits∥EX key a hash record must
// carry to be considered a hit for this hash.
func matchBitsFor(hash uint64, threadID uint8, extended bool) uint32 {
	hashBits := uint32(getBits(hash, 0, hashBitsBits))
	ex := uint32(0)
	if extended {
		ex = 1
	}
	return (uint32(threadID)<<hashBitsBits | hashBits)<<1 | ex
}

func (ht *Hashtable) bucketAt(index uint64) *Bucket {
	return &ht.buckets[index%uint64(len(ht.buckets))]
}

// GetHits resolves a seed hash to its candidate records. isExtended
// selects whether a primary or extended-seed thread is being queried. The
// returned hits exclude any trailing INTERVAL_* records, which are instead
// reassembled into intervals.
func (ht *Hashtable) GetHits(hash uint64, isExtended bool) (hits []HashRecord, intervals []ExtendTableInterval, err error) {
	vba := ht.virtualByteAddress(hash)
	bucketIndex := bucketIndexOf(vba)
	wantThreadID := threadIDOf(vba)
	want := matchBitsFor(hash, wantThreadID, isExtended)

	lastInThread, chainPending := ht.scanBucket(ht.bucketAt(bucketIndex), want, &hits, true)

	if !lastInThread && chainPending == nil {
		lastInThread = ht.probeNeighborBuckets(bucketIndex, want, &hits)
	}

	for chainPending != nil && !lastInThread {
		next, err := ht.followChain(*chainPending, bucketIndex, want, &hits)
		if err != nil {
			return nil, nil, err
		}
		chainPending = next
		if chainPending == nil {
			lastInThread = true
		}
	}

	remaining, iv, err := reassembleIntervals(hits)
	if err != nil {
		return nil, nil, errors.E(err, "reassembling extend-table interval")
	}
	if iv != nil {
		intervals = append(intervals, *iv)
	}
	return remaining, intervals, nil
}

// scanBucket scans one bucket's eight records for hits matching want. It
// stops at the first LAST_IN_THREAD hit or at any CHAIN_CON_* record. When
// allowChainBegin is set, a CHAIN_BEG_* record whose filter test passes is
// returned as chainPending, the chain to follow (it is not appended to
// hits); scanning of the current bucket continues regardless (it may still
// be lastInThread).
func (ht *Hashtable) scanBucket(b *Bucket, want uint32, hits *[]HashRecord, allowChainBegin bool) (lastInThread bool, chainPending *HashRecord) {
	for i := 0; i < RecordsPerBucket; i++ {
		rec := b[i]
		switch {
		case rec.Type() == RecordEmpty:
			continue
		case rec.IsHit() || rec.Type() == RecordHiFreq || rec.Type() == RecordExtend || isIntervalType(rec.Type()):
			if rec.MatchBits() != want {
				continue
			}
			*hits = append(*hits, rec)
			if rec.IsLastInThread() {
				return true, nil
			}
		case allowChainBegin && rec.IsChainBegin():
			if chainFilterMatches(rec, want) {
				r := rec
				chainPending = &r
			}
		case rec.IsChainCon():
			return false, chainPending
		}
	}
	return false, chainPending
}

func chainFilterMatches(rec HashRecord, want uint32) bool {
	hashLow := uint64(want >> 1) // drop EX bit: filter tests key against hash, not match bits
	switch rec.Type() {
	case RecordChainBegMask, RecordChainConMask:
		return (rec.FilterMask()>>(hashLow&0x1F))&1 != 0
	case RecordChainBegList, RecordChainConList:
		target := uint8(hashLow & 0xFF)
		for i := 0; i < filterListCount; i++ {
			if rec.FilterListLane(i) == target {
				return true
			}
		}
		return false
	}
	return false
}

// probeNeighborBuckets visits up to maxProbes-1 buckets following
// bucketIndex within its 32KB block, wrapping within the block. It returns
// true if a LAST_IN_THREAD hit was found.
func (ht *Hashtable) probeNeighborBuckets(bucketIndex uint64, want uint32, hits *[]HashRecord) bool {
	blockStart := (bucketIndex / bucketsPerBlock) * bucketsPerBlock
	offsetInBlock := bucketIndex % bucketsPerBlock
	for i := uint64(1); i < maxProbes; i++ {
		idx := blockStart + (offsetInBlock+i)%bucketsPerBlock
		lastInThread, chainPending := ht.scanBucket(ht.bucketAt(idx), want, hits, false)
		if lastInThread {
			return true
		}
		if chainPending != nil {
			*hits = append(*hits, *chainPending)
			return false
		}
	}
	return false
}

// followChain resolves one CHAIN_BEG_*/CHAIN_CON_* pointer: the pointer is
// relative to the 2^18-bucket block containing bucketIndex. It removes the
// pending chain record from hits (it was pushed only tentatively), scans the
// target bucket starting after the first CHAIN_CON_* record found there, and
// returns a new pending chain record if the chain continues.
func (ht *Hashtable) followChain(pending HashRecord, bucketIndex uint64, want uint32, hits *[]HashRecord) (*HashRecord, error) {
	if len(*hits) > 0 && (*hits)[len(*hits)-1] == pending {
		*hits = (*hits)[:len(*hits)-1]
	}
	const chainBlockBits = 18
	baseBucketIndex := (bucketIndex >> chainBlockBits) << chainBlockBits
	targetIndex := baseBucketIndex + pending.ChainPointer()
	b := ht.bucketAt(targetIndex)

	start := 0
	for start < RecordsPerBucket && !b[start].IsChainCon() {
		start++
	}
	if start == RecordsPerBucket {
		return nil, errors.E("chain pointer target bucket has no CHAIN_CON record")
	}
	chainCon := b[start]
	var chainPending *HashRecord
	lastInThread := false
	for i := start + 1; i < RecordsPerBucket; i++ {
		rec := b[i]
		if rec.Type() == RecordEmpty {
			continue
		}
		if rec.MatchBits() == want && (rec.IsHit() || rec.Type() == RecordHiFreq || rec.Type() == RecordExtend || isIntervalType(rec.Type())) {
			*hits = append(*hits, rec)
			if rec.IsLastInThread() {
				lastInThread = true
				break
			}
		}
	}
	if lastInThread {
		return nil, nil
	}
	if chainFilterMatches(chainCon, want) {
		r := chainCon
		chainPending = &r
		*hits = append(*hits, r)
	}
	return chainPending, nil
}
