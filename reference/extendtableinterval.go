package reference

import "github.com/grailbio/base/errors"

// ExtendTableRecord is one entry of the extend table: a single reference
// position sampled from an interval too large to enumerate directly in the
// hashtable, plus the reverse-complement flag carried alongside it.
type ExtendTableRecord struct {
	Position uint32
	IsRC     bool
}

// ExtendTableInterval is the reassembled [Start, Start+Length) run of
// extend-table entries referenced by a chain of INTERVAL_* hash records, plus
// the count of additional alt-liftover matches folded into the same seed
// (ExtraLiftoverMatches).
type ExtendTableInterval struct {
	Start                uint64
	Length               uint64
	ExtraLiftoverMatches uint8
}

// reassembleIntervals peels the trailing run of INTERVAL_* records off hits
// and reassembles it into a single ExtendTableInterval, per the seven record
// combinations below (mirrors the original ExtendTableInterval constructor):
//
//  1. SL0 (msb=0)                          -- one record
//  2. SL1 (msb=1), S                       -- two records
//  3. SLE (exlift>0, msb=0)                -- one record
//  4. SLE (exlift>0, msb=1), S             -- two records
//  5. SLE (exlift=0, msb=0), L             -- two records
//  6. SLE (exlift=0, msb=1), S, L          -- three records
//  7. S, L (no SL/SLE prefix)              -- two records
//
// It returns the remaining hits (with the interval records removed) and the
// interval, or an error if the trailing run doesn't match a known shape.
func reassembleIntervals(hits []HashRecord) ([]HashRecord, *ExtendTableInterval, error) {
	firstInterval := len(hits)
	for firstInterval > 0 && isIntervalType(hits[firstInterval-1].Type()) {
		firstInterval--
	}
	run := hits[firstInterval:]
	if len(run) == 0 {
		return hits, nil, nil
	}
	iv, err := parseIntervalRun(run)
	if err != nil {
		return hits, nil, err
	}
	return hits[:firstInterval], iv, nil
}

func isIntervalType(t RecordType) bool {
	switch t {
	case RecordIntervalSL, RecordIntervalSLE, RecordIntervalS, RecordIntervalL:
		return true
	}
	return false
}

func parseIntervalRun(run []HashRecord) (*ExtendTableInterval, error) {
	head := run[0]
	switch head.Type() {
	case RecordIntervalSL:
		if !head.IsMsb() {
			if len(run) != 1 {
				return nil, errors.E("SL0 interval must be a single record")
			}
			start, length := decodeSL(head)
			return &ExtendTableInterval{Start: start, Length: length}, nil
		}
		if len(run) != 2 || run[1].Type() != RecordIntervalS {
			return nil, errors.E("SL1 interval must be followed by exactly one S record")
		}
		start, length := decodeSL(head)
		s := extractSLow(run[1])
		return &ExtendTableInterval{Start: (start << 24) | s, Length: length}, nil

	case RecordIntervalSLE:
		exlift := head.Exlift()
		lowLen, lowStart := decodeSLE(head)
		switch {
		case exlift > 0 && !head.IsMsb():
			if len(run) != 1 {
				return nil, errors.E("SLE(exlift>0) interval must be a single record")
			}
			return &ExtendTableInterval{Start: lowStart, Length: lowLen, ExtraLiftoverMatches: exlift}, nil
		case exlift > 0 && head.IsMsb():
			if len(run) != 2 || run[1].Type() != RecordIntervalS {
				return nil, errors.E("SLE(exlift>0,msb) interval must be followed by one S record")
			}
			s := extractSLow(run[1])
			return &ExtendTableInterval{Start: (lowStart << 24) | s, Length: lowLen, ExtraLiftoverMatches: exlift}, nil
		case exlift == 0 && !head.IsMsb():
			if len(run) != 2 || run[1].Type() != RecordIntervalL {
				return nil, errors.E("SLE(exlift=0) interval must be followed by one L record")
			}
			l := extractL(run[1])
			return &ExtendTableInterval{Start: lowStart, Length: (lowLen << 24) | l}, nil
		default: // exlift == 0 && msb
			if len(run) != 3 || run[1].Type() != RecordIntervalS || run[2].Type() != RecordIntervalL {
				return nil, errors.E("SLE(exlift=0,msb) interval must be followed by S then L records")
			}
			s := extractSLow(run[1])
			l := extractL(run[2])
			return &ExtendTableInterval{Start: (lowStart << 24) | s, Length: (lowLen << 24) | l}, nil
		}

	case RecordIntervalS:
		if len(run) != 2 || run[1].Type() != RecordIntervalL {
			return nil, errors.E("S interval must be followed by one L record")
		}
		start := extractS(head)
		length := extractL(run[1])
		return &ExtendTableInterval{Start: start, Length: length}, nil

	default:
		return nil, errors.E("unrecognized interval record run")
	}
}

// decodeSL extracts (start, length) from an INTERVAL_SL record. For SL0
// (msb=0) start is the low 15 bits, length the next 9. For SL1 (msb=1) start
// is the next 8 bits, length the remaining 16.
func decodeSL(r HashRecord) (start, length uint64) {
	v := uint64(r)
	if !r.IsMsb() {
		return getBits(v, 0, 15), getBits(v, 15, 9)
	}
	return getBits(v, 0, 8), getBits(v, 8, 16)
}

// decodeSLE extracts (length, start) low bits from an INTERVAL_SLE record.
func decodeSLE(r HashRecord) (length, start uint64) {
	v := uint64(r)
	return getBits(v, 8, 8), getBits(v, 0, 8)
}

// extractS extracts a standalone INTERVAL_S start value: its 24-bit field
// plus a carry bit (bit 24) when the record's carry flag is set.
func extractS(r HashRecord) uint64 {
	v := getBits(uint64(r), 0, 24)
	if r.HasCarry() {
		v |= 1 << 24
	}
	return v
}

// extractSLow extracts the raw 24-bit field of an INTERVAL_S record that
// follows an SL1/SLE(msb=1) prefix, where the prefix supplies the high bits
// of the combined start and this record's carry flag is unused.
func extractSLow(r HashRecord) uint64 {
	return getBits(uint64(r), 0, 24)
}

func extractL(r HashRecord) uint64 {
	return getBits(uint64(r), 0, 24)
}
