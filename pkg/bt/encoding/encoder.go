package encoding

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

type BenEncoder struct {
	buf *bytes.Buffer
}

func NewBenEncoder() *BenEncoder {
	return &BenEncoder{
		buf: bytes.NewBuffer(nil),
	}
}

// Encode returns the canonical encoding of v
func Encode(v Value) []byte {
	return NewBenEncoder().Encode(v)
}

// Encode appends the canonical encoding of v to the encoder's buffer and returns everything
// encoded since the last Reset. The returned slice is only valid until the next call.
func (b *BenEncoder) Encode(value Value) []byte {
	b.encode(value)
	return b.buf.Bytes()
}

func (b *BenEncoder) Reset() {
	b.buf.Reset()
}

func (b *BenEncoder) encode(value Value) {
	switch v := value.(type) {
	case Int:
		b.encodeInt(v)
	case String:
		b.encodeString(v)
	case List:
		b.encodeList(v)
	case Dict:
		b.encodeDict(v)
	default:
		// the decoder never produces anything else
		panic(fmt.Sprintf("bencode: cannot encode %T", value))
	}
}

func (b *BenEncoder) encodeInt(v Int) {
	var scratch [24]byte
	b.buf.WriteByte('i')
	b.buf.Write(strconv.AppendInt(scratch[:0], int64(v), 10))
	b.buf.WriteByte('e')
}

func (b *BenEncoder) encodeString(v []byte) {
	var scratch [24]byte
	b.buf.Write(strconv.AppendInt(scratch[:0], int64(len(v)), 10))
	b.buf.WriteByte(':')
	b.buf.Write(v)
}

func (b *BenEncoder) encodeList(list List) {
	b.buf.WriteByte('l')
	for _, item := range list {
		b.encode(item)
	}
	b.buf.WriteByte('e')
}

func (b *BenEncoder) encodeDict(dict Dict) {
	// bencoding requires keys to be sorted as raw bytes, which is how Go compares strings
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.buf.WriteByte('d')
	for _, k := range keys {
		b.encodeString([]byte(k))
		b.encode(dict[k])
	}
	b.buf.WriteByte('e')
}
