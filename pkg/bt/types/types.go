package types

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/burmudar/bt-magnet/pkg/bt"
	"github.com/burmudar/bt-magnet/pkg/bt/encoding"
	"github.com/burmudar/bt-magnet/pkg/bt/infohash"
)

// PieceHashSize is the length of one SHA-1 piece hash in the info dictionary
const PieceHashSize = 20

type FileInfo struct {
	Length int
	Paths  []string
}

// Torrent is a read-only view over a decoded metainfo dictionary
type Torrent struct {
	Announce     string
	AnnounceList [][]string
	Name         string
	PieceLength  int
	PieceHashes  []string
	Length       int
	Files        []*FileInfo
	Comment      string
	CreatedBy    string
	CreationDate time.Time
	Private      bool
	Hash         infohash.T
	RawInfo      encoding.Dict
}

// Text converts a byte string into displayable text. Every byte that is not part of a valid
// UTF-8 sequence becomes its own U+FFFD.
func Text(s encoding.String) string {
	if utf8.Valid(s) {
		return string(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range string(s) {
		b.WriteRune(r)
	}
	return b.String()
}

// FromValue builds a Torrent from a decoded metainfo value. Optional fields that have the
// wrong shape are left empty; only a missing info dictionary is an error.
func FromValue(v encoding.Value) (*Torrent, error) {
	dict, ok := v.(encoding.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: expected a dictionary but got %T", infohash.ErrMissingInfoDictionary, v)
	}

	info, ok := dict.Dict("info")
	if !ok {
		return nil, infohash.ErrMissingInfoDictionary
	}

	var m Torrent
	m.RawInfo = info
	m.Hash = infohash.HashBytes(encoding.Encode(info))

	if s, ok := dict.Bytes("announce"); ok {
		m.Announce = Text(s)
	}

	if list, ok := dict.List("announce-list"); ok {
		m.AnnounceList = make([][]string, 0, len(list))
		for _, lvalue := range list {
			inner, ok := lvalue.(encoding.List)
			if !ok {
				continue
			}
			tier := []string{}
			for _, v := range inner {
				if s, ok := v.(encoding.String); ok {
					tier = append(tier, Text(s))
				}
			}
			m.AnnounceList = append(m.AnnounceList, tier)
		}
	}

	if s, ok := dict.Bytes("comment"); ok {
		m.Comment = Text(s)
	}
	if s, ok := dict.Bytes("created by"); ok {
		m.CreatedBy = Text(s)
	}
	if v, ok := dict.Int("creation date"); ok {
		m.CreationDate = time.Unix(int64(v), 0).UTC()
	}

	if s, ok := info.Bytes("name"); ok {
		m.Name = Text(s)
	}
	if v, ok := info.Int("piece length"); ok {
		m.PieceLength = int(v)
	}
	if v, ok := info.Int("private"); ok {
		m.Private = v == 1
	}

	// Parse the pieces
	if pieces, ok := info.Bytes("pieces"); ok {
		m.PieceHashes = make([]string, 0, bt.Ceil(len(pieces), PieceHashSize))
		for i := 0; i < len(pieces); i += PieceHashSize {
			end := bt.Min(i+PieceHashSize, len(pieces))
			m.PieceHashes = append(m.PieceHashes, string(pieces[i:end]))
		}
	}

	if v, ok := info.Int("length"); ok {
		m.Length = int(v)
	} else if fileList, ok := info.List("files"); ok {
		m.Files = make([]*FileInfo, 0, len(fileList))
		for _, item := range fileList {
			if fileDict, ok := item.(encoding.Dict); ok {
				m.Files = append(m.Files, newFileInfo(fileDict))
			}
		}
	}

	return &m, nil
}

func newFileInfo(value encoding.Dict) *FileInfo {
	var f FileInfo

	if v, ok := value.Int("length"); ok {
		f.Length = int(v)
	}
	paths := []string{}
	if list, ok := value.List("path"); ok {
		for _, v := range list {
			if s, ok := v.(encoding.String); ok {
				paths = append(paths, Text(s))
			}
		}
	}
	f.Paths = paths

	return &f
}

// TotalLength is the single file length or the sum of all file lengths
func (m *Torrent) TotalLength() int {
	if len(m.Files) == 0 {
		return m.Length
	}
	total := 0
	for _, f := range m.Files {
		total += f.Length
	}
	return total
}

// NumPieces is the number of pieces the content should be split into according to the
// piece length. It can differ from len(PieceHashes) for a damaged file.
func (m *Torrent) NumPieces() int {
	if m.PieceLength <= 0 {
		return 0
	}
	return bt.Ceil(m.TotalLength(), m.PieceLength)
}

func (f *FileInfo) Path() string {
	return strings.Join(f.Paths, "/")
}
