package reference

// ExtendTable is the flat array of extended-hit records an ExtendTableInterval
// indexes into: each 64-bit entry packs (liftGroup[62:35], liftCode[34:33],
// RC[32], Position[31:0]).
type ExtendTable struct {
	entries []uint64
}

// NewExtendTable wraps a flat entry array (as mapped from extend_table.bin).
func NewExtendTable(entries []uint64) *ExtendTable { return &ExtendTable{entries: entries} }

func (t *ExtendTable) Len() int { return len(t.entries) }

func (t *ExtendTable) Position(i int) uint32 { return uint32(t.entries[i]) }

func (t *ExtendTable) IsRC(i int) bool { return getFlag(t.entries[i], 32) }

func (t *ExtendTable) LiftCode(i int) uint8 { return uint8(getBits(t.entries[i], 33, 2)) }

func (t *ExtendTable) LiftGroup(i int) uint32 { return uint32(getBits(t.entries[i], 35, 28)) }
