package encoding

import (
	"errors"
	"fmt"
	"testing"
)

func TestReadInt(t *testing.T) {
	tt := []struct {
		value    string
		expected int64
		err      error
	}{
		{"i32e", 32, nil},
		{"i10000e", 10000, nil},
		{"i-10000e", -10000, nil},
		{"i0e", 0, nil},
		{"i9223372036854775807e", 9223372036854775807, nil},
		{"ie", 0, ErrMalformedInteger},
		{"i-e", 0, ErrMalformedInteger},
		{"i-0e", 0, ErrMalformedInteger},
		{"i042e", 0, ErrMalformedInteger},
		{"i-042e", 0, ErrMalformedInteger},
		{"i1x2e", 0, ErrMalformedInteger},
		{"i--1e", 0, ErrMalformedInteger},
		{"i9223372036854775808e", 0, ErrMalformedInteger},
		{"i10", 0, ErrUnexpectedEnd},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("ReadInt of %s", tc.value), func(t *testing.T) {
			r := NewBencodeReader([]byte(tc.value))

			num, err := r.ReadInt()
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected err %v got %v", tc.err, err)
			}

			if num != tc.expected {
				t.Errorf("%s: expected %d got %d", tc.value, tc.expected, num)
			}

			if tc.err == nil && !r.AtEnd() {
				t.Errorf("expected reader to be past the integer, at offset %d", r.Offset())
			}
		})
	}
}

func TestReadString(t *testing.T) {
	tt := []struct {
		value    string
		expected string
		err      error
	}{
		{"7:william", "william", nil},
		{"1:w", "w", nil},
		{"0:", "", nil},
		{"4:\x00\xff\x01e", "\x00\xff\x01e", nil},
		{"8:short", "", ErrTruncatedString},
		{"no-colon", "", ErrMalformedInteger},
		{"12", "", ErrUnexpectedEnd},
		{"04:spam", "", ErrMalformedInteger},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("ReadString of %q", tc.value), func(t *testing.T) {
			r := NewBencodeReader([]byte(tc.value))

			str, err := r.ReadString()
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected err %v got %v", tc.err, err)
			}

			if string(str) != tc.expected {
				t.Errorf("%q: expected %q got %q", tc.value, tc.expected, str)
			}
		})
	}
}

func TestReadStringLeavesCursorAfterValue(t *testing.T) {
	r := NewBencodeReader([]byte("4:spami1e"))

	if _, err := r.ReadString(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Offset() != 6 || r.ch != 'i' {
		t.Fatalf("expected cursor on 'i' at offset 6, got %q at %d", r.ch, r.Offset())
	}
}

func TestReadStringCopiesInput(t *testing.T) {
	input := []byte("4:spam")
	r := NewBencodeReader(input)

	str, err := r.ReadString()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input[2] = 'S'

	if string(str) != "spam" {
		t.Fatalf("decoded string changed with the input: %q", str)
	}
}
