// Package fastq provides a minimal FASTQ pair scanner producing
// sequences.Read pairs, standing in for the external tokenizer the core
// pipeline assumes, adapted from the original FASTQ scanner.
package fastq

import (
	"bufio"
	"io"

	"github.com/grailbio/base/errors"

	"github.com/biomapper/seedmap/reference"
	"github.com/biomapper/seedmap/sequences"
)

var (
	// ErrShort is returned when a truncated FASTQ record is encountered.
	ErrShort = errors.New("fastq: short record")
	// ErrInvalid is returned when a record doesn't match the expected shape.
	ErrInvalid = errors.New("fastq: invalid record")
	// ErrDiscordant is returned when two paired streams fall out of step.
	ErrDiscordant = errors.New("fastq: discordant pair")
)

var errEOF = errors.New("fastq: eof")

var iupac = [256]reference.Base4{}

func init() {
	for i := range iupac {
		iupac[i] = reference.Base4N
	}
	iupac['A'], iupac['a'] = reference.Base4A, reference.Base4A
	iupac['C'], iupac['c'] = reference.Base4C, reference.Base4C
	iupac['G'], iupac['g'] = reference.Base4G, reference.Base4G
	iupac['T'], iupac['t'] = reference.Base4T, reference.Base4T
	iupac['N'], iupac['n'] = reference.Base4N, reference.Base4N
}

// Scanner reads @name/bases/+/qualities records from a single FASTQ stream.
// A scanner splits lines on \n, \r\n, \r, or \n\r via bufio.Scanner's
// default behavior extended with a custom split function, accepting EOF
// without a trailing newline but failing (ErrShort) a record that is
// missing any of its four lines.
type Scanner struct {
	b      *bufio.Scanner
	err    error
	nextID uint64
}

// NewScanner constructs a Scanner over r. bufSize bounds the largest single
// line accepted; a record whose line exceeds it fails with ErrShort rather
// than silently truncating.
func NewScanner(r io.Reader, bufSize int) *Scanner {
	initialCap := bufSize
	if initialCap > 64*1024 {
		initialCap = 64 * 1024
	}
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 0, initialCap), bufSize)
	b.Split(splitAnyLineEnding)
	return &Scanner{b: b}
}

func splitAnyLineEnding(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			if i+1 < len(data) && data[i+1] == '\r' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (s *Scanner) scanLine() ([]byte, bool) {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = errEOF
		} else if s.err == bufio.ErrTooLong {
			s.err = ErrShort
		}
		return nil, false
	}
	return s.b.Bytes(), true
}

// Scan reads the next read, setting pairPos on the result. It returns false
// on EOF or error; call Err to distinguish the two.
func (s *Scanner) Scan(pairPos sequences.PairPosition) (*sequences.Read, bool) {
	if s.err != nil {
		return nil, false
	}
	nameLine, ok := s.scanLine()
	if !ok {
		return nil, false
	}
	if len(nameLine) == 0 || nameLine[0] != '@' {
		s.err = ErrInvalid
		return nil, false
	}
	name := string(nameLine[1:])

	seqLine, ok := s.scanLine()
	if !ok {
		s.err = ErrShort
		return nil, false
	}
	bases := make([]reference.Base4, len(seqLine))
	for i, c := range seqLine {
		bases[i] = iupac[c]
	}

	plusLine, ok := s.scanLine()
	if !ok {
		s.err = ErrShort
		return nil, false
	}
	if len(plusLine) == 0 || plusLine[0] != '+' {
		s.err = ErrInvalid
		return nil, false
	}

	qualLine, ok := s.scanLine()
	if !ok {
		s.err = ErrShort
		return nil, false
	}
	qual := make([]byte, len(qualLine))
	copy(qual, qualLine)

	id := s.nextID
	s.nextID++
	return sequences.NewRead(name, bases, qual, id, pairPos), true
}

// Err returns the scanning error, if any (nil at a clean EOF).
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}

// PairScanner composes two Scanners to read an R1/R2 pair stream in lock
// step.
type PairScanner struct {
	r1, r2 *Scanner
	err    error
}

// NewPairScanner builds a PairScanner over the given R1/R2 readers.
func NewPairScanner(r1, r2 io.Reader, bufSize int) *PairScanner {
	return &PairScanner{r1: NewScanner(r1, bufSize), r2: NewScanner(r2, bufSize)}
}

// Scan reads the next read pair, or returns false at EOF/error.
func (p *PairScanner) Scan() (mate1, mate2 *sequences.Read, ok bool) {
	mate1, ok1 := p.r1.Scan(sequences.PairFirst)
	mate2, ok2 := p.r2.Scan(sequences.PairSecond)
	if ok1 != ok2 {
		p.err = ErrDiscordant
		return nil, nil, false
	}
	return mate1, mate2, ok1 && ok2
}

// Err returns the scanning error, if any.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}
