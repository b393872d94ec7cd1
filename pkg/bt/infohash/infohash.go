package infohash

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/burmudar/bt-magnet/pkg/bt/encoding"
)

const Size = 20

var ErrMissingInfoDictionary = errors.New("no info dictionary found in torrent")

// T is the 20-byte SHA-1 digest of a torrent's info dictionary
type T [Size]byte

func HashBytes(b []byte) T {
	return sha1.Sum(b)
}

func (t T) String() string {
	return t.HexString()
}

// HexString returns the 40 lowercase hex characters used in magnet links
func (t T) HexString() string {
	return hex.EncodeToString(t[:])
}

func FromHexString(s string) (T, error) {
	var h T
	if len(s) != 2*Size {
		return h, fmt.Errorf("info hash hex string has bad length: %d", len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return T{}, fmt.Errorf("invalid info hash %q: %w", s, err)
	}
	return h, nil
}

// Compute hashes the canonical encoding of the torrent's info dictionary. Keys are
// re-sorted, so a file whose info dictionary was written out of order hashes differently
// than with ComputeRaw.
func Compute(torrent encoding.Value) (T, error) {
	info, err := infoDict(torrent)
	if err != nil {
		return T{}, err
	}
	return HashBytes(encoding.Encode(info)), nil
}

// InfoHash is Compute rendered as a hex string
func InfoHash(torrent encoding.Value) (string, error) {
	h, err := Compute(torrent)
	if err != nil {
		return "", err
	}
	return h.HexString(), nil
}

// ComputeRaw hashes the info dictionary exactly as it appears in buf, which matches what
// other torrent clients compute even for non-canonical files.
func ComputeRaw(buf []byte, opts ...encoding.Option) (T, error) {
	raw, ok, err := encoding.RawValue(buf, "info", opts...)
	if err != nil {
		return T{}, err
	}
	if !ok || len(raw) == 0 || raw[0] != 'd' {
		return T{}, ErrMissingInfoDictionary
	}
	return HashBytes(raw), nil
}

func infoDict(torrent encoding.Value) (encoding.Dict, error) {
	dict, ok := torrent.(encoding.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: torrent is not a dictionary", ErrMissingInfoDictionary)
	}
	info, ok := dict.Dict("info")
	if !ok {
		return nil, ErrMissingInfoDictionary
	}
	return info, nil
}
