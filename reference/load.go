package reference

import (
	"os"
	"unsafe"

	"github.com/grailbio/base/errors"
	"golang.org/x/sys/unix"
)

var errBadBucketFileSize = errors.New("reference: bucket file size is not a multiple of the bucket size")
var errBadExtendTableFileSize = errors.New("reference: extend table file size is not a multiple of 8 bytes")

// MappedBuckets is an mmap'd hash-table bucket array, kept open for the
// lifetime of a run the way fusion/kmer_index.go keeps its anonymous
// hugepage mapping alive: the backing file descriptor is closed immediately
// after mapping (the mapping itself keeps the pages resident), and Close
// unmaps on shutdown.
type MappedBuckets struct {
	data    []byte
	Buckets []Bucket
}

// LoadHashtableBuckets mmaps path (expected to be hash_table.bin's
// bucket region, i.e. the file with its config header already stripped or
// offset past) read-only and reinterprets it as a bucket array, avoiding a
// full-file copy into the Go heap for what's typically a multi-gigabyte
// table.
func LoadHashtableBuckets(path string) (*MappedBuckets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(st.Size())
	if size%BucketBytes != 0 {
		return nil, errBadBucketFileSize
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	buckets := unsafe.Slice((*Bucket)(unsafe.Pointer(&data[0])), size/BucketBytes)
	return &MappedBuckets{data: data, Buckets: buckets}, nil
}

// Close unmaps the bucket region.
func (m *MappedBuckets) Close() error {
	return unix.Munmap(m.data)
}

// MappedExtendTable is an mmap'd extend-table entry array, analogous to
// MappedBuckets.
type MappedExtendTable struct {
	data  []byte
	Table *ExtendTable
}

// LoadExtendTable mmaps path (extend_table.bin's flat uint64 entry array)
// read-only and reinterprets it as an ExtendTable, which interval
// lookups resolve entries from. An empty file is a valid, empty table.
func LoadExtendTable(path string) (*MappedExtendTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(st.Size())
	if size%8 != 0 {
		return nil, errBadExtendTableFileSize
	}
	if size == 0 {
		return &MappedExtendTable{Table: NewExtendTable(nil)}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	entries := unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), size/8)
	return &MappedExtendTable{data: data, Table: NewExtendTable(entries)}, nil
}

// Close unmaps the extend table. Safe to call on a nil receiver (the case
// when the hash table config has no extend table) or an empty mapping.
func (m *MappedExtendTable) Close() error {
	if m == nil || m.data == nil {
		return nil
	}
	return unix.Munmap(m.data)
}

// MappedReferenceImage is an mmap'd packed reference image, analogous to
// MappedBuckets.
type MappedReferenceImage struct {
	data []byte
	Seq  *ReferenceSequence
}

// LoadReferenceImage mmaps reference.bin as a private copy-on-write mapping
// (writes never reach the file) and wraps it as a
// ReferenceSequence over numBases bases laid out per sequences.
func LoadReferenceImage(path string, numBases uint64, sequences []SequenceDescriptor) (*MappedReferenceImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(st.Size())
	if size == 0 {
		return nil, errors.New("reference: empty reference image file")
	}

	// MAP_PRIVATE with PROT_WRITE so NewReferenceSequence's begin/end trim
	// masking lands copy-on-write, never touching the backing file.
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &MappedReferenceImage{data: data, Seq: NewReferenceSequence(data, numBases, sequences)}, nil
}

// Close unmaps the reference image.
func (m *MappedReferenceImage) Close() error {
	return unix.Munmap(m.data)
}
