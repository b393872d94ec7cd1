package encoding

import (
	"strconv"

	"github.com/burmudar/bt-magnet/pkg/bt"
)

type BencodeReader struct {
	input []byte
	// pos is the offset of ch. When pos == len(input) the reader is exhausted.
	pos int
	ch  byte
}

func NewBencodeReader(input []byte) *BencodeReader {
	r := BencodeReader{
		input: input,
		pos:   -1,
	}

	r.ReadChar() // populate the first char

	return &r
}

// Offset returns the position of the byte under the cursor
func (b *BencodeReader) Offset() int {
	return b.pos
}

func (b *BencodeReader) AtEnd() bool {
	return b.pos >= len(b.input)
}

func (b *BencodeReader) ReadChar() {
	if b.pos+1 >= len(b.input) {
		b.pos = len(b.input)
		b.ch = 0
		return
	}
	b.pos++
	b.ch = b.input[b.pos]
}

// seek moves the cursor to pos, which may be len(input)
func (b *BencodeReader) seek(pos int) {
	b.pos = pos - 1
	b.ReadChar()
}

// ReadInt reads i<digits>e. The cursor must be on 'i'.
func (b *BencodeReader) ReadInt() (int64, error) {
	start := b.pos
	if b.AtEnd() || b.ch != 'i' {
		return 0, syntaxErr(ErrInvalidTag, start, "expected 'i' to start an integer")
	}
	b.ReadChar()

	numStart := b.pos
	for !b.AtEnd() && b.ch != 'e' {
		if !isDigit(b.ch) && !(b.ch == '-' && b.pos == numStart) {
			return 0, syntaxErr(ErrMalformedInteger, b.pos, "unexpected byte %q in integer", b.ch)
		}
		b.ReadChar()
	}
	if b.AtEnd() {
		return 0, syntaxErr(ErrUnexpectedEnd, b.pos, "integer starting at offset %d is missing terminator 'e'", start)
	}

	num, err := parseInt(b.input[numStart:b.pos], numStart)
	if err != nil {
		return 0, err
	}
	b.ReadChar() // read past e

	return num, nil
}

// ReadString reads <length>:<bytes>. The cursor must be on the first digit of the length.
// The returned bytes are copied out of the input.
func (b *BencodeReader) ReadString() ([]byte, error) {
	start := b.pos
	for !b.AtEnd() && b.ch != ':' {
		if !isDigit(b.ch) {
			return nil, syntaxErr(ErrMalformedInteger, b.pos, "unexpected byte %q in string length", b.ch)
		}
		b.ReadChar()
	}
	if b.AtEnd() {
		return nil, syntaxErr(ErrUnexpectedEnd, b.pos, "string length starting at offset %d is missing ':'", start)
	}

	n, err := parseInt(b.input[start:b.pos], start)
	if err != nil {
		return nil, err
	}

	// now we can read the string with the length that we got
	dataStart := b.pos + 1
	remaining := len(b.input) - dataStart
	if n > int64(remaining) {
		return nil, syntaxErr(ErrTruncatedString, dataStart, "string needs %d bytes but only %d remain", n, remaining)
	}

	data := make([]byte, n)
	copy(data, b.input[dataStart:dataStart+int(n)])
	b.seek(dataStart + int(n))

	return data, nil
}

// parseInt parses a canonical decimal integer: an optional '-' followed by digits without
// leading zeros. "-0" is rejected.
func parseInt(num []byte, offset int) (int64, error) {
	s := string(num)
	switch {
	case len(s) == 0:
		return 0, syntaxErr(ErrMalformedInteger, offset, "empty integer")
	case s == "-":
		return 0, syntaxErr(ErrMalformedInteger, offset, "sign without digits")
	case s[0] == '-' && s[1] == '0':
		return 0, syntaxErr(ErrMalformedInteger, offset, "negative zero or leading zero in %q", s)
	case s[0] == '0' && len(s) > 1:
		return 0, syntaxErr(ErrMalformedInteger, offset, "leading zero in %q", preview(s))
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, syntaxErr(ErrMalformedInteger, offset, "%q out of range", preview(s))
	}
	return v, nil
}

func preview(s string) string {
	return s[:bt.Min(len(s), 32)]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
