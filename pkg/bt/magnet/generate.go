package magnet

import (
	"fmt"

	"github.com/burmudar/bt-magnet/pkg/bt/encoding"
	"github.com/burmudar/bt-magnet/pkg/bt/infohash"
	"github.com/burmudar/bt-magnet/pkg/bt/types"
)

type options struct {
	maxDepth    int
	rawInfoHash bool
}

type Option func(*options)

// WithMaxDepth limits list and dictionary nesting while decoding
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// WithRawInfoHash hashes the info dictionary bytes as they appear in the file instead of
// its canonical re-encoding.
func WithRawInfoHash(enabled bool) Option {
	return func(o *options) {
		o.rawInfoHash = enabled
	}
}

// Generate decodes a metainfo file and builds its magnet link. Any failure aborts the whole
// pipeline.
func Generate(raw []byte, opts ...Option) (*Link, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	decodeOpts := []encoding.Option{encoding.WithMaxDepth(o.maxDepth)}

	v, err := encoding.Decode(raw, decodeOpts...)
	if err != nil {
		return nil, err
	}

	torrent, ok := v.(encoding.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: torrent is a %s", infohash.ErrMissingInfoDictionary, v.Kind())
	}

	var h infohash.T
	if o.rawInfoHash {
		h, err = infohash.ComputeRaw(raw, decodeOpts...)
	} else {
		h, err = infohash.Compute(torrent)
	}
	if err != nil {
		return nil, err
	}

	return &Link{
		InfoHash: h,
		Name:     DisplayName(torrent),
		Trackers: Trackers(torrent),
	}, nil
}

// DisplayName returns info.name as text, or "" when there is none
func DisplayName(torrent encoding.Dict) string {
	info, ok := torrent.Dict("info")
	if !ok {
		return ""
	}
	name, ok := info.Bytes("name")
	if !ok {
		return ""
	}
	return types.Text(name)
}

// Trackers collects "announce" and every string in every tier of "announce-list", without
// duplicates and in order of first appearance. Entries with an unexpected shape are skipped.
func Trackers(torrent encoding.Dict) []string {
	seen := types.NewSet[string]()
	trackers := []string{}

	add := func(v encoding.Value) {
		s, ok := v.(encoding.String)
		if !ok || len(s) == 0 {
			return
		}
		tracker := types.Text(s)
		if seen.PutIfAbsent(tracker) {
			trackers = append(trackers, tracker)
		}
	}

	add(torrent["announce"])

	if tiers, ok := torrent.List("announce-list"); ok {
		for _, tier := range tiers {
			if inner, ok := tier.(encoding.List); ok {
				for _, tracker := range inner {
					add(tracker)
				}
			}
		}
	}

	return trackers
}
