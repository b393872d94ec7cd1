package encoding

import (
	"bytes"
	"fmt"
)

type Kind int

const (
	KindInt Kind = iota
	KindString
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded bencode value. Only the four types in this package implement it:
// Int, String, List and Dict.
type Value interface {
	Kind() Kind
	bencodeValue()
}

// Int is a bencoded integer, i<n>e
type Int int64

// String is a bencoded byte string. It is not guaranteed to be valid UTF-8.
type String []byte

// List is an ordered sequence of values
type List []Value

// Dict maps byte string keys to values. Keys are held in Go strings so that they can be
// arbitrary bytes.
type Dict map[string]Value

func (Int) Kind() Kind    { return KindInt }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Dict) Kind() Kind   { return KindDict }

func (Int) bencodeValue()    {}
func (String) bencodeValue() {}
func (List) bencodeValue()   {}
func (Dict) bencodeValue()   {}

// Text returns the string as Go text without any validation
func (s String) Text() string {
	return string(s)
}

func (d Dict) Bytes(key string) (String, bool) {
	v, ok := d[key].(String)
	return v, ok
}

func (d Dict) Int(key string) (Int, bool) {
	v, ok := d[key].(Int)
	return v, ok
}

func (d Dict) List(key string) (List, bool) {
	v, ok := d[key].(List)
	return v, ok
}

func (d Dict) Dict(key string) (Dict, bool) {
	v, ok := d[key].(Dict)
	return v, ok
}

// Equal reports whether a and b are structurally equal. A nil String and an empty String
// are equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && bytes.Equal(av, bv)
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Dict:
		bv, ok := b.(Dict)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

// Native converts a value tree into plain Go values so that it can be handed to
// encoding/json and friends. Strings become Go strings, integers int64, lists []interface{}
// and dictionaries map[string]interface{}.
func Native(v Value) interface{} {
	switch v := v.(type) {
	case Int:
		return int64(v)
	case String:
		return string(v)
	case List:
		values := make([]interface{}, 0, len(v))
		for _, item := range v {
			values = append(values, Native(item))
		}
		return values
	case Dict:
		dict := make(map[string]interface{}, len(v))
		for k, item := range v {
			dict[k] = Native(item)
		}
		return dict
	default:
		return nil
	}
}
