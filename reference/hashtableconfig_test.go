package reference

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigBytes hand-assembles a hash_table.cfg image matching the field
// order ParseHashtableConfig expects, for round-trip testing.
func writeConfigBytes(t *testing.T, sds []SequenceDescriptor) []byte {
	t.Helper()
	var buf bytes.Buffer
	fields := []interface{}{
		uint32(9),                // version
		uint64(0x2C991CE6A8DD55), // primaryCrcPoly
		uint32(54),               // primaryCrcBits
		uint32(21),               // primarySeedBases
		uint64(0x1234),           // secondaryCrcPoly
		uint32(32),               // secondaryCrcBits
		uint32(48),               // tableSize64ths
		uint64(1 << 30),          // hashtableBytes
		uint64(1 << 20),          // extendTableBytes
		uint32(16),               // minFrequencyToExtend
		uint32(10000),            // maxSeedFrequency
	}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			t.Fatalf("writing field %v: %v", f, err)
		}
	}
	binary.Write(&buf, binary.LittleEndian, uint32(len(sds)))
	for _, sd := range sds {
		binary.Write(&buf, binary.LittleEndian, uint32(len(sd.Name)))
		buf.WriteString(sd.Name)
		binary.Write(&buf, binary.LittleEndian, sd.SeqStart)
		binary.Write(&buf, binary.LittleEndian, sd.SeqLen)
		binary.Write(&buf, binary.LittleEndian, sd.BegTrim)
		binary.Write(&buf, binary.LittleEndian, sd.EndTrim)
	}
	return buf.Bytes()
}

func TestParseHashtableConfigRoundTrip(t *testing.T) {
	sds := []SequenceDescriptor{
		{Name: "chr1", SeqStart: 0, SeqLen: 1000, BegTrim: 5, EndTrim: 5},
		{Name: "chr2", SeqStart: 1000, SeqLen: 2000, BegTrim: 0, EndTrim: 10},
	}
	raw := writeConfigBytes(t, sds)
	cfg, err := ParseHashtableConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.EqualValues(t, 9, cfg.Version)
	assert.Equal(t, uint64(0x2C991CE6A8DD55), cfg.PrimaryCrcPoly)
	assert.EqualValues(t, 54, cfg.PrimaryCrcBits)
	assert.EqualValues(t, 21, cfg.PrimarySeedBases)
	require.Len(t, cfg.Sequences, 2)
	assert.Equal(t, "chr2", cfg.Sequences[1].Name)
	assert.EqualValues(t, 1000, cfg.Sequences[1].SeqStart)
	assert.Equal(t, 48.0/64.0, cfg.SqueezeFactor())
	assert.True(t, cfg.HasExtendTable())
}

func TestHasExtendTableVersionGate(t *testing.T) {
	cfg := &HashtableConfig{Version: 7}
	if cfg.HasExtendTable() {
		t.Error("version 7 predates the extend table and must report false")
	}
	cfg.Version = 8
	if !cfg.HasExtendTable() {
		t.Error("version 8 introduces the extend table and must report true")
	}
}

func TestParseHashtableConfigTruncated(t *testing.T) {
	raw := writeConfigBytes(t, nil)
	_, err := ParseHashtableConfig(bytes.NewReader(raw[:10]))
	if err == nil {
		t.Error("expected an error parsing a truncated config")
	}
}
