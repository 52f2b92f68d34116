// Package reference implements the on-disk reference image and hashtable
// consumed by the seed mapper: a 4-bit packed reference sequence view
// and the bit-packed, tagged-union hashtable used to resolve seed hashes to
// candidate reference positions.
package reference

// RecordType identifies the logical variant a HashRecord carries. Bits
// [31:28] of the record select HIT when they are not all set; otherwise bits
// [27:24] carry one of the opcodes below. RecordHit is given a sentinel value
// strictly greater than any 4-bit opcode so the two spaces never collide.
type RecordType uint8

const (
	RecordEmpty        RecordType = 0x0
	RecordHiFreq       RecordType = 0x1
	RecordExtend       RecordType = 0x2
	recordRepair       RecordType = 0x3 // obsolete, never produced
	RecordChainBegMask RecordType = 0x4
	RecordChainBegList RecordType = 0x5
	RecordChainConMask RecordType = 0x6
	RecordChainConList RecordType = 0x7
	RecordIntervalSL   RecordType = 0x8
	RecordIntervalSLE  RecordType = 0x9
	RecordIntervalS    RecordType = 0xA
	RecordIntervalL    RecordType = 0xB
	RecordHit          RecordType = 16
)

// Bit layout for the 64-bit hash record.
const (
	threadIDStart = 58
	threadIDBits  = 6
	hashBitsStart = 35
	hashBitsBits  = 23
	exFlag        = 34 // primary vs extended seed
	lfFlag        = 33 // last in thread
	rcFlag        = 32 // forward vs reverse complement
	rsFlag        = 32 // has-random-sample, HIFREQ/EXTEND only; shares the bit position with rcFlag

	notHitStart = 28
	notHitBits  = 4
	opCodeStart = 24
	opCodeBits  = 4

	alFlag         = 22
	frequencyStart = 0
	frequencyBits  = 22

	rfFlag               = 23
	extensionLengthStart = 18
	extensionLengthBits  = 4
	extensionIDStart     = 0
	extensionIDBits      = 18

	chainPointerStart = 0
	chainPointerBits  = 18

	filterMaskValueBits = 5
	filterMaskStart     = 32
	filterMaskBits      = 32
	filterListValueBits = 8
	filterListCount     = filterMaskBits / filterListValueBits

	matchBitsStart = exFlag
	matchBitsBits  = threadIDBits + hashBitsBits + 1 // 30

	exliftStart = 16
	exliftBits  = 8
)

func getBits(v uint64, start, bits uint) uint64 {
	return (v >> start) & ((uint64(1) << bits) - 1)
}

func getFlag(v uint64, pos uint) bool {
	return (v>>pos)&1 != 0
}

// HashRecord is one 8-byte slot of a Bucket. All classification is a bitfield
// test; this is a discriminated union over a uint64, not a class hierarchy.
type HashRecord uint64

// IsHit reports whether bits [31:28] are not all set, i.e. this is a regular
// HIT record rather than a tagged opcode record.
func (r HashRecord) IsHit() bool {
	return getBits(uint64(r), notHitStart, notHitBits) != 0xF
}

func (r HashRecord) OpCode() uint64 {
	return getBits(uint64(r), opCodeStart, opCodeBits)
}

// Type returns RecordHit for ordinary hits, otherwise the 4-bit opcode.
func (r HashRecord) Type() RecordType {
	if r.IsHit() {
		return RecordHit
	}
	return RecordType(r.OpCode())
}

func (r HashRecord) ThreadID() uint8 {
	return uint8(getBits(uint64(r), threadIDStart, threadIDBits))
}

// MatchBits is the 30-bit ThreadId∥HashBits∥EX key identifying the logical
// hash key within a bucket.
func (r HashRecord) MatchBits() uint32 {
	return uint32(getBits(uint64(r), matchBitsStart, matchBitsBits))
}

func (r HashRecord) IsLastInThread() bool    { return getFlag(uint64(r), lfFlag) }
func (r HashRecord) IsReverseComplement() bool { return getFlag(uint64(r), rcFlag) }

// IsMsb has the same underlying bit as IsReverseComplement; it is the
// INTERVAL_SL/SLE/S "MSB"/carry flag under a different name.
func (r HashRecord) IsMsb() bool      { return r.IsReverseComplement() }
func (r HashRecord) HasCarry() bool   { return r.IsReverseComplement() }
func (r HashRecord) IsExtendedSeed() bool  { return getFlag(uint64(r), exFlag) }
func (r HashRecord) IsAltLiftover() bool   { return getFlag(uint64(r), alFlag) }
func (r HashRecord) HasRepairRecords() bool { return getFlag(uint64(r), rfFlag) }
func (r HashRecord) HasRandomSamples() bool { return getFlag(uint64(r), rsFlag) }

func (r HashRecord) Frequency() uint32 {
	return uint32(getBits(uint64(r), frequencyStart, frequencyBits))
}

func (r HashRecord) IsChainBegin() bool {
	t := r.Type()
	return t == RecordChainBegMask || t == RecordChainBegList
}

func (r HashRecord) IsChainCon() bool {
	t := r.Type()
	return t == RecordChainConMask || t == RecordChainConList
}

func (r HashRecord) IsChainRecord() bool { return r.IsChainBegin() || r.IsChainCon() }

func (r HashRecord) ChainPointer() uint64 {
	return getBits(uint64(r), chainPointerStart, chainPointerBits)
}

func (r HashRecord) Exlift() uint8 {
	return uint8(getBits(uint64(r), exliftStart, exliftBits))
}

// Position is the 32 LSB of the value, valid for HIT-family records.
func (r HashRecord) Position() uint32 { return uint32(r) }

func (r HashRecord) HashBits() uint32 {
	return uint32(getBits(uint64(r), hashBitsStart, hashBitsBits))
}

func (r HashRecord) FilterMask() uint32 {
	return uint32(getBits(uint64(r), filterMaskStart, filterMaskBits))
}

// FilterListLane returns one of the four 8-bit lanes of a CHAIN_*_LIST
// record, i indexed 0 (lowest lane, bits [39:32]) to 3 (bits [63:56]).
func (r HashRecord) FilterListLane(i int) uint8 {
	return uint8(getBits(uint64(r), uint(filterMaskStart+8*i), filterListValueBits))
}

// ExtensionLength is the total extension length in bases (double each wing).
func (r HashRecord) ExtensionLength() uint64 {
	return getBits(uint64(r), extensionLengthStart, extensionLengthBits)
}

func (r HashRecord) ExtensionID() uint64 {
	return getBits(uint64(r), extensionIDStart, extensionIDBits)
}

// --- constructors, used by the binary loader and by tests assembling
// literal bucket layouts ---

func bits(v uint64, start, n uint) uint64 { return (v & ((uint64(1) << n) - 1)) << start }

func boolBit(b bool, pos uint) uint64 {
	if b {
		return uint64(1) << pos
	}
	return 0
}

// NewEmpty builds an EMPTY record: bit pattern 0xF at [31:28], zero elsewhere.
func NewEmpty() HashRecord {
	return HashRecord(bits(0xF, notHitStart, notHitBits))
}

// NewHit builds a HIT record.
func NewHit(threadID uint8, hashBits uint32, ex, lf, rc bool, refPos uint32) HashRecord {
	v := bits(uint64(threadID), threadIDStart, threadIDBits) |
		bits(uint64(hashBits), hashBitsStart, hashBitsBits) |
		boolBit(ex, exFlag) | boolBit(lf, lfFlag) | boolBit(rc, rcFlag) |
		uint64(refPos)
	return HashRecord(v)
}

// NewExtend builds an EXTEND record.
func NewExtend(threadID uint8, hashBits uint32, ex, lf, rc bool, extensionLength uint64, extensionID uint64) HashRecord {
	v := bits(uint64(threadID), threadIDStart, threadIDBits) |
		bits(uint64(hashBits), hashBitsStart, hashBitsBits) |
		boolBit(ex, exFlag) | boolBit(lf, lfFlag) | boolBit(rc, rcFlag) |
		bits(0xF, notHitStart, notHitBits) |
		bits(uint64(RecordExtend), opCodeStart, opCodeBits) |
		bits(extensionLength, extensionLengthStart, extensionLengthBits) |
		bits(extensionID, extensionIDStart, extensionIDBits)
	return HashRecord(v)
}

// NewChainBegMask/NewChainConMask build chain records using a 32-bit filter
// mask of 5-bit values (membership test: (mask>>(hash&0x1F))&1).
func NewChainBegMask(filterMask uint32, chainPointer uint64) HashRecord {
	return newChainMask(RecordChainBegMask, filterMask, chainPointer)
}
func NewChainConMask(filterMask uint32, chainPointer uint64) HashRecord {
	return newChainMask(RecordChainConMask, filterMask, chainPointer)
}
func newChainMask(t RecordType, filterMask uint32, chainPointer uint64) HashRecord {
	v := bits(uint64(filterMask), filterMaskStart, filterMaskBits) |
		bits(0xF, notHitStart, notHitBits) |
		bits(uint64(t), opCodeStart, opCodeBits) |
		bits(chainPointer, chainPointerStart, chainPointerBits)
	return HashRecord(v)
}

// NewChainBegList/NewChainConList build chain records using a 4-lane 8-bit
// value list (membership test: any lane equals hash&0xFF).
func NewChainBegList(lanes [4]uint8, chainPointer uint64) HashRecord {
	return newChainList(RecordChainBegList, lanes, chainPointer)
}
func NewChainConList(lanes [4]uint8, chainPointer uint64) HashRecord {
	return newChainList(RecordChainConList, lanes, chainPointer)
}
func newChainList(t RecordType, lanes [4]uint8, chainPointer uint64) HashRecord {
	var v uint64
	for i, lane := range lanes {
		v |= bits(uint64(lane), uint(filterMaskStart+8*i), filterListValueBits)
	}
	v |= bits(0xF, notHitStart, notHitBits) |
		bits(uint64(t), opCodeStart, opCodeBits) |
		bits(chainPointer, chainPointerStart, chainPointerBits)
	return HashRecord(v)
}

// NewIntervalSL builds an INTERVAL_SL0 (msb=false) or INTERVAL_SL1 (msb=true)
// record. For SL0, start is the low 15 bits and length the next 9; for SL1,
// start is the next 8 bits (shifted into [31:24] of the start field) and
// length the remaining 16.
func NewIntervalSL(threadID uint8, hashBits uint32, ex, lf, msb bool, start, length uint32) HashRecord {
	var payload uint64
	if !msb {
		payload = bits(uint64(start), 0, 15) | bits(uint64(length), 15, 9)
	} else {
		payload = bits(uint64(start), 0, 8) | bits(uint64(length), 8, 16)
	}
	return newIntervalRecord(RecordIntervalSL, threadID, hashBits, ex, lf, msb, payload)
}

// NewIntervalSLE builds an INTERVAL_SLE record.
func NewIntervalSLE(threadID uint8, hashBits uint32, ex, lf, msb bool, exlift, length, start uint8) HashRecord {
	payload := bits(uint64(start), 0, 8) | bits(uint64(length), 8, 8) | bits(uint64(exlift), 16, 8)
	return newIntervalRecord(RecordIntervalSLE, threadID, hashBits, ex, lf, msb, payload)
}

// NewIntervalS builds an INTERVAL_S record (24-bit start plus carry flag).
func NewIntervalS(threadID uint8, hashBits uint32, ex, lf, carry bool, start uint32) HashRecord {
	return newIntervalRecord(RecordIntervalS, threadID, hashBits, ex, lf, carry, bits(uint64(start), 0, 24))
}

// NewIntervalL builds an INTERVAL_L record (24-bit length only).
func NewIntervalL(threadID uint8, hashBits uint32, ex, lf bool, length uint32) HashRecord {
	return newIntervalRecord(RecordIntervalL, threadID, hashBits, ex, lf, false, bits(uint64(length), 0, 24))
}

func newIntervalRecord(t RecordType, threadID uint8, hashBits uint32, ex, lf, msb bool, payload uint64) HashRecord {
	v := bits(uint64(threadID), threadIDStart, threadIDBits) |
		bits(uint64(hashBits), hashBitsStart, hashBitsBits) |
		boolBit(ex, exFlag) | boolBit(lf, lfFlag) | boolBit(msb, rcFlag) |
		bits(0xF, notHitStart, notHitBits) |
		bits(uint64(t), opCodeStart, opCodeBits) |
		payload
	return HashRecord(v)
}
