// Package trace reads, writes and generates memory access traces, and
// provides hooks that trace what the cache levels do.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/mem/mem"
)

// ErrMalformedRecord is returned for a trace line that is not an operation
// followed by a hexadecimal address.
var ErrMalformedRecord = errors.New("malformed trace record")

// Reader parses a trace with one "<op> <hex address>" record per line.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader on top of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next access. Blank lines are skipped. Operations other
// than r and w produce an access with mem.OpInvalid. Next returns io.EOF
// after the last record.
func (r *Reader) Next() (mem.Access, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}

		return r.parse(text)
	}

	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return mem.Access{}, fmt.Errorf("%w: line %d: %w",
				ErrMalformedRecord, r.line+1, err)
		}

		return mem.Access{}, err
	}

	return mem.Access{}, io.EOF
}

func (r *Reader) parse(text string) (mem.Access, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return mem.Access{}, fmt.Errorf("%w: line %d: %q",
			ErrMalformedRecord, r.line, text)
	}

	address, err := ParseAddress(fields[1])
	if err != nil {
		return mem.Access{}, fmt.Errorf("%w: line %d: %v",
			ErrMalformedRecord, r.line, err)
	}

	return mem.Access{Op: mem.ParseOp(fields[0]), Address: address}, nil
}

// ParseAddress parses a 32-bit hexadecimal address with an optional 0x
// prefix.
func ParseAddress(s string) (uint32, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return 0, fmt.Errorf("empty address %q", s)
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("address %q: %w", s, err)
	}

	return uint32(v), nil
}

// LoadAll reads every record of a trace. On a malformed record it returns
// the accesses read before it together with the error.
func LoadAll(r *Reader) ([]mem.Access, error) {
	var accesses []mem.Access

	for {
		a, err := r.Next()
		if errors.Is(err, io.EOF) {
			return accesses, nil
		}

		if err != nil {
			return accesses, err
		}

		accesses = append(accesses, a)
	}
}
