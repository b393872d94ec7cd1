package encoding

// DefaultMaxDepth is the nesting limit used when no limit is given. Metainfo files nest
// about five levels deep.
const DefaultMaxDepth = 64

type Option func(*Decoder)

// WithMaxDepth limits how many lists and dictionaries may be open at once. Values <= 0
// select DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(d *Decoder) {
		if n <= 0 {
			n = DefaultMaxDepth
		}
		d.maxDepth = n
	}
}

// Decoder reads bencoded values one at a time from a byte buffer
type Decoder struct {
	r        *BencodeReader
	maxDepth int
}

func NewDecoder(buf []byte, opts ...Option) *Decoder {
	d := &Decoder{
		r:        NewBencodeReader(buf),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode decodes the single value in buf. The whole buffer must be consumed.
func Decode(buf []byte, opts ...Option) (Value, error) {
	d := NewDecoder(buf, opts...)
	v, err := d.Decode()
	if err != nil {
		return nil, err
	}
	if d.More() {
		return nil, syntaxErr(ErrTrailingData, d.Offset(), "%d bytes left after value", len(buf)-d.Offset())
	}
	return v, nil
}

// Decode decodes the value under the cursor and advances past it
func (d *Decoder) Decode() (Value, error) {
	return d.decodeValue(0)
}

// More reports whether there are bytes left to decode
func (d *Decoder) More() bool {
	return !d.r.AtEnd()
}

func (d *Decoder) Offset() int {
	return d.r.Offset()
}

// Example:
// - 5:hello -> hello
// - i42e -> 42
// - l5:helloe -> [hello]
func (d *Decoder) decodeValue(depth int) (Value, error) {
	r := d.r
	if r.AtEnd() {
		return nil, syntaxErr(ErrInvalidTag, r.Offset(), "expected a value but reached end of input")
	}

	switch {
	case r.ch == 'd':
		if err := d.enter(depth); err != nil {
			return nil, err
		}
		return d.decodeDict(depth+1, nil)
	case r.ch == 'l':
		if err := d.enter(depth); err != nil {
			return nil, err
		}
		return d.decodeList(depth + 1)
	case r.ch == 'i':
		v, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		return Int(v), nil
	case isDigit(r.ch):
		v, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return String(v), nil
	default:
		return nil, syntaxErr(ErrInvalidTag, r.Offset(), "unknown decode tag %q", r.ch)
	}
}

func (d *Decoder) enter(depth int) error {
	if depth+1 > d.maxDepth {
		return syntaxErr(ErrNestingTooDeep, d.r.Offset(), "more than %d nested lists or dictionaries", d.maxDepth)
	}
	return nil
}

func (d *Decoder) decodeList(depth int) (Value, error) {
	r := d.r
	start := r.Offset()
	values := make(List, 0)
	r.ReadChar() // move past 'l'
	for {
		if r.AtEnd() {
			return nil, syntaxErr(ErrUnexpectedEnd, r.Offset(), "list starting at offset %d is not terminated", start)
		}
		if r.ch == 'e' {
			break
		}
		v, err := d.decodeValue(depth)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	r.ReadChar() // move past 'e'

	return values, nil
}

// decodeDict decodes a dictionary. When visit is set it is called with every key and the
// input span [start, end) of its value.
func (d *Decoder) decodeDict(depth int, visit func(key string, start, end int)) (Value, error) {
	r := d.r
	start := r.Offset()
	dict := make(Dict)
	r.ReadChar() // move past 'd'
	for {
		if r.AtEnd() {
			return nil, syntaxErr(ErrUnexpectedEnd, r.Offset(), "dictionary starting at offset %d is not terminated", start)
		}
		if r.ch == 'e' {
			break
		}

		keyOffset := r.Offset()
		k, err := d.decodeValue(depth)
		if err != nil {
			return nil, err
		}
		key, ok := k.(String)
		if !ok {
			return nil, syntaxErr(ErrInvalidDictionaryKey, keyOffset, "expected string key but got %s", k.Kind())
		}

		if r.AtEnd() {
			return nil, syntaxErr(ErrUnexpectedEnd, r.Offset(), "missing value for key %q", preview(string(key)))
		}
		valueStart := r.Offset()
		v, err := d.decodeValue(depth)
		if err != nil {
			return nil, err
		}
		// duplicate keys: last one wins
		dict[string(key)] = v
		if visit != nil {
			visit(string(key), valueStart, r.Offset())
		}
	}
	r.ReadChar() // advance past 'e'

	return dict, nil
}

// RawValue decodes the top-level dictionary in buf and returns the exact bytes that encoded
// the value stored under key. The returned slice aliases buf. ok is false when buf is not a
// dictionary or has no such key.
func RawValue(buf []byte, key string, opts ...Option) (raw []byte, ok bool, err error) {
	d := NewDecoder(buf, opts...)
	if d.r.AtEnd() {
		return nil, false, syntaxErr(ErrInvalidTag, 0, "expected a value but reached end of input")
	}
	if d.r.ch != 'd' {
		if _, err := d.Decode(); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	if err := d.enter(0); err != nil {
		return nil, false, err
	}

	_, err = d.decodeDict(1, func(k string, start, end int) {
		if k == key {
			raw, ok = buf[start:end], true
		}
	})
	if err != nil {
		return nil, false, err
	}
	return raw, ok, nil
}
