package reference

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/base/errors"
)

// SequenceDescriptor describes one contig packed into the reference image:
// its offset (in bases) into the packed sequence, and the begin/end trim
// regions that are pre-masked to N so seeds never originate there.
type SequenceDescriptor struct {
	Name     string
	SeqStart uint64
	SeqLen   uint64
	BegTrim  uint32
	EndTrim  uint32
}

// HashtableConfig is the parsed hash_table.cfg header: CRC parameters,
// bucket addressing parameters, and per-contig layout.
type HashtableConfig struct {
	Version              uint32
	PrimaryCrcPoly       uint64
	PrimaryCrcBits       uint
	PrimarySeedBases     uint
	SecondaryCrcPoly     uint64
	SecondaryCrcBits     uint
	TableSize64ths       uint32 // squeeze factor numerator; squeeze = TableSize64ths/64
	HashtableBytes       uint64
	ExtendTableBytes     uint64
	MinFrequencyToExtend uint32
	MaxSeedFrequency     uint32
	Sequences            []SequenceDescriptor
}

// SqueezeFactor returns the fractional occupancy target used to compute
// virtual byte addresses, see Hashtable.virtualByteAddress.
func (c *HashtableConfig) SqueezeFactor() float64 {
	return float64(c.TableSize64ths) / 64.0
}

// HasExtendTable reports whether this hashtable format version stores an
// extend table (interval records point into it).
func (c *HashtableConfig) HasExtendTable() bool { return c.Version >= 8 }

// ParseHashtableConfig reads the fixed-field header followed by a
// variable-length contig table from r.
func ParseHashtableConfig(r io.Reader) (*HashtableConfig, error) {
	var c HashtableConfig
	fields := []struct {
		name string
		dst  interface{}
	}{
		{"version", &c.Version},
		{"primaryCrcPoly", &c.PrimaryCrcPoly},
		{"primaryCrcBits", new(uint32)},
		{"primarySeedBases", new(uint32)},
		{"secondaryCrcPoly", &c.SecondaryCrcPoly},
		{"secondaryCrcBits", new(uint32)},
		{"tableSize64ths", &c.TableSize64ths},
		{"hashtableBytes", &c.HashtableBytes},
		{"extendTableBytes", &c.ExtendTableBytes},
		{"minFrequencyToExtend", &c.MinFrequencyToExtend},
		{"maxSeedFrequency", &c.MaxSeedFrequency},
	}
	var primaryCrcBits, primarySeedBases, secondaryCrcBits uint32
	for _, f := range fields {
		switch f.name {
		case "primaryCrcBits":
			f.dst = &primaryCrcBits
		case "primarySeedBases":
			f.dst = &primarySeedBases
		case "secondaryCrcBits":
			f.dst = &secondaryCrcBits
		}
		if err := binary.Read(r, binary.LittleEndian, f.dst); err != nil {
			return nil, errors.E(err, "hashtable config: reading "+f.name)
		}
	}
	c.PrimaryCrcBits = uint(primaryCrcBits)
	c.PrimarySeedBases = uint(primarySeedBases)
	c.SecondaryCrcBits = uint(secondaryCrcBits)

	var numSequences uint32
	if err := binary.Read(r, binary.LittleEndian, &numSequences); err != nil {
		return nil, errors.E(err, "hashtable config: reading sequence count")
	}
	c.Sequences = make([]SequenceDescriptor, numSequences)
	for i := range c.Sequences {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, errors.E(err, "hashtable config: reading sequence name length")
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, errors.E(err, "hashtable config: reading sequence name")
		}
		sd := &c.Sequences[i]
		sd.Name = string(name)
		for _, v := range []interface{}{&sd.SeqStart, &sd.SeqLen} {
			if err := binary.Read(r, binary.LittleEndian, v); err != nil {
				return nil, errors.E(err, "hashtable config: reading sequence layout")
			}
		}
		for _, v := range []interface{}{&sd.BegTrim, &sd.EndTrim} {
			if err := binary.Read(r, binary.LittleEndian, v); err != nil {
				return nil, errors.E(err, "hashtable config: reading sequence trim")
			}
		}
	}
	return &c, nil
}
