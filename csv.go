package main

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"
)

type state int

const (
	// most common state. Outside of quoted field.
	start state = iota
	// in quoted field
	quoted
	// in quoted field and the previous character was a backslash
	escape
)

// converter rewrites backslash-escaped quotes into the doubled-quote form
// encoding/csv expects. Real-world exports are inconsistent about which
// convention they use.
type converter struct {
	delegate  io.Reader
	buf       []byte // place we read into
	remaining []byte // what is still left to be read from
	escaped   []byte // if non-empty, raw bytes ready to be copied to output, before remaining
	s         state
}

func newConverter(r io.Reader) *converter {
	return &converter{
		delegate: r,
		buf:      make([]byte, 4092),
	}
}

func (c *converter) Read(p []byte) (n int, err error) {
	if len(c.escaped) != 0 {
		n = copy(p, c.escaped)
		c.escaped = c.escaped[n:]
		return n, nil
	}

	if len(c.remaining) == 0 {
		n, err = c.delegate.Read(c.buf)
		if n == 0 {
			return n, err
		}
		c.remaining = c.buf[:n]
	}

	i := 0 // cursor to p
	for i < len(p) && len(c.remaining) != 0 {
		next := c.remaining[0]
		c.remaining = c.remaining[1:]
		switch c.s {
		case start:
			p[i] = next
			i++
			if next == '"' {
				c.s = quoted
			}
		case quoted:
			switch next {
			case '"':
				p[i] = next
				i++
				c.s = start
			case '\\':
				c.s = escape
			default:
				p[i] = next
				i++
			}
		case escape:
			switch next {
			case '"':
				c.escaped = []byte{'"', '"'}
			case 'n':
				c.escaped = []byte{'\n'}
			default:
				c.escaped = []byte{next}
			}
			c.s = quoted
			return i, err
		}
	}

	return i, err
}

// readRawRows reads a CSV export into header-keyed raw rows. The first
// line is the header; missing trailing cells become "". This is the
// file-reader collaborator: the core below it never touches files.
func readRawRows(fpath string) ([]RawRow, []string, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to open csv file: %v", fpath)
	}
	defer f.Close()

	r := csv.NewReader(newConverter(f))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to read header line: %v", fpath)
	}

	var rows []RawRow
	for {
		cols, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "unable to read csv line: %v", fpath)
		}
		row := make(RawRow, len(headers))
		for i, h := range headers {
			if i < len(cols) {
				row[h] = cols[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, headers, nil
}
