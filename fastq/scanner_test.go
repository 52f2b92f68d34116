package fastq

import (
	"bytes"
	"testing"

	"github.com/biomapper/seedmap/sequences"
)

func TestScanOneRead(t *testing.T) {
	const rec = "@r1\nACGTN\n+\nIIIII\n"
	s := NewScanner(bytes.NewReader([]byte(rec)), 1<<16)
	r, ok := s.Scan(sequences.PairFirst)
	if !ok {
		t.Fatalf("scan failed: %v", s.Err())
	}
	if r.Name != "r1" {
		t.Errorf("name = %q, want r1", r.Name)
	}
	if r.Len() != 5 {
		t.Errorf("len = %d, want 5", r.Len())
	}
	if r.PairPosition != sequences.PairFirst {
		t.Errorf("pair position = %v, want PairFirst", r.PairPosition)
	}
	if _, ok := s.Scan(sequences.PairFirst); ok {
		t.Errorf("expected EOF after one record")
	}
	if err := s.Err(); err != nil {
		t.Errorf("unexpected error at clean EOF: %v", err)
	}
}

func TestScanCRLF(t *testing.T) {
	const rec = "@r1\r\nACGT\r\n+\r\nIIII\r\n@r2\r\nTTTT\r\n+\r\nIIII\r\n"
	s := NewScanner(bytes.NewReader([]byte(rec)), 1<<16)
	var names []string
	for {
		r, ok := s.Scan(sequences.PairFirst)
		if !ok {
			break
		}
		names = append(names, r.Name)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "r1" || names[1] != "r2" {
		t.Errorf("names = %v, want [r1 r2]", names)
	}
}

func TestScanBadHeader(t *testing.T) {
	s := NewScanner(bytes.NewReader([]byte("not-a-header\nACGT\n+\nIIII\n")), 1<<16)
	if _, ok := s.Scan(sequences.PairFirst); ok {
		t.Fatal("expected failure on malformed header")
	}
	if s.Err() != ErrInvalid {
		t.Errorf("err = %v, want ErrInvalid", s.Err())
	}
}

func TestScanShortRecord(t *testing.T) {
	s := NewScanner(bytes.NewReader([]byte("@r1\nACGT\n")), 1<<16)
	if _, ok := s.Scan(sequences.PairFirst); ok {
		t.Fatal("expected failure on truncated record")
	}
	if s.Err() != ErrShort {
		t.Errorf("err = %v, want ErrShort", s.Err())
	}
}

func TestPairScannerDiscordant(t *testing.T) {
	r1 := "@r1\nACGT\n+\nIIII\n@r2\nACGT\n+\nIIII\n"
	r2 := "@r1\nACGT\n+\nIIII\n"
	p := NewPairScanner(bytes.NewReader([]byte(r1)), bytes.NewReader([]byte(r2)), 1<<16)
	if _, _, ok := p.Scan(); !ok {
		t.Fatalf("first pair should scan: %v", p.Err())
	}
	if _, _, ok := p.Scan(); ok {
		t.Fatal("expected discordant failure on second pair")
	}
	if p.Err() != ErrDiscordant {
		t.Errorf("err = %v, want ErrDiscordant", p.Err())
	}
}

func TestScanOverlongLineFails(t *testing.T) {
	s := NewScanner(bytes.NewReader([]byte("@r1\nACGTACGTACGT\n+\nIIIIIIIIIIII\n")), 8)
	if _, ok := s.Scan(sequences.PairFirst); ok {
		t.Fatal("expected failure when a line exceeds the buffer cap")
	}
	if s.Err() == nil {
		t.Fatal("expected a non-nil error")
	}
}
