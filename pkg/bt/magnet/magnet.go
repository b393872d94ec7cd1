package magnet

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/burmudar/bt-magnet/pkg/bt/infohash"
	"github.com/burmudar/bt-magnet/pkg/bt/types"
)

const (
	scheme     = "magnet:?"
	btihPrefix = "urn:btih:"
)

// Link holds the parts of a magnet link
type Link struct {
	InfoHash infohash.T
	Name     string
	Trackers []string
}

func (l *Link) String() string {
	return BuildMagnetLink(l.InfoHash.HexString(), l.Name, l.Trackers)
}

// BuildMagnetLink formats magnet:?xt=urn:btih:<hash>[&dn=<name>][&tr=<tracker>]*.
// dn is left out when displayName is empty. Each distinct tracker appears once, in the order
// it was first given.
func BuildMagnetLink(hash string, displayName string, trackers []string) string {
	var builder strings.Builder

	builder.WriteString(scheme)
	builder.WriteString("xt=")
	builder.WriteString(btihPrefix)
	builder.WriteString(hash)

	if displayName != "" {
		builder.WriteString("&dn=")
		builder.WriteString(percentEncode(displayName))
	}

	seen := types.NewSet[string]()
	for _, tr := range trackers {
		if !seen.PutIfAbsent(tr) {
			continue
		}
		builder.WriteString("&tr=")
		builder.WriteString(percentEncode(tr))
	}

	return builder.String()
}

// percentEncode escapes everything except the characters a URI component may carry
// unescaped: letters, digits and -_.!~*'()
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var builder strings.Builder

	for i := 0; i < len(s); i++ {
		b := s[i]
		if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') ||
			strings.IndexByte("-_.!~*'()", b) >= 0 {
			builder.WriteByte(b)
		} else {
			builder.WriteByte('%')
			builder.WriteByte(hex[b>>4])
			builder.WriteByte(hex[b&0x0f])
		}
	}

	return builder.String()
}

// Parse reads a magnet link with a hex btih exact topic
func Parse(uri string) (*Link, error) {
	if !strings.HasPrefix(uri, scheme) {
		return nil, fmt.Errorf("not a magnet link: %q", uri)
	}

	var (
		link  Link
		found bool
	)
	for _, param := range strings.Split(uri[len(scheme):], "&") {
		if param == "" {
			continue
		}
		key, rawValue, _ := strings.Cut(param, "=")
		value, err := url.PathUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("invalid %s parameter: %w", key, err)
		}

		switch key {
		case "xt":
			if !strings.HasPrefix(value, btihPrefix) {
				continue
			}
			h, err := infohash.FromHexString(strings.TrimPrefix(value, btihPrefix))
			if err != nil {
				return nil, err
			}
			link.InfoHash = h
			found = true
		case "dn":
			link.Name = value
		case "tr":
			link.Trackers = append(link.Trackers, value)
		}
	}

	if !found {
		return nil, fmt.Errorf("magnet link has no %s exact topic", btihPrefix)
	}

	return &link, nil
}
