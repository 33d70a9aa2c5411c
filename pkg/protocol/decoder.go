package protocol

import (
	"errors"
	"io"
)

// MaxStringLen caps decoded string lengths. A navigation URL has no
// business being longer than this; the cap prevents a malicious length
// prefix from forcing a large allocation.
const MaxStringLen = 8 * 1024

// maxVarintLen is the maximum number of bytes a uint64 varint occupies.
const maxVarintLen = 10

// Common decoding errors.
var (
	ErrVarintOverflow = errors.New("protocol: varint overflow")
	ErrStringTooLarge = errors.New("protocol: string length exceeds limit")
)

// Decoder is a binary decoder that reads from a byte buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a new decoder from the given byte slice.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF returns true if all bytes have been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadUvarint reads an unsigned varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	var v uint64
	var shift uint

	for i := 0; ; i++ {
		if i >= maxVarintLen {
			return 0, ErrVarintOverflow
		}
		if d.pos >= len(d.buf) {
			return 0, io.ErrUnexpectedEOF
		}
		b := d.buf[d.pos]
		d.pos++
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
}

// ReadString reads a varint length-prefixed string, enforcing
// MaxStringLen.
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if length > MaxStringLen {
		return "", ErrStringTooLarge
	}
	n := int(length)
	if d.pos+n > len(d.buf) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(d.buf[d.pos : d.pos+n])
	d.pos += n
	return s, nil
}
