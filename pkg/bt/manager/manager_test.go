package manager_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burmudar/bt-magnet/pkg/bt/encoding"
	"github.com/burmudar/bt-magnet/pkg/bt/fetch"
	"github.com/burmudar/bt-magnet/pkg/bt/infohash"
	"github.com/burmudar/bt-magnet/pkg/bt/manager"
)

type fakeFetcher struct {
	files map[string][]byte
	calls atomic.Int64
}

func (f *fakeFetcher) Fetch(_ context.Context, source string) ([]byte, error) {
	f.calls.Add(1)
	data, ok := f.files[source]
	if !ok {
		return nil, &fetch.TransferError{Source: source, Err: errors.New("not found")}
	}
	return data, nil
}

func torrentNamed(name string) []byte {
	return encoding.Encode(encoding.Dict{
		"announce": encoding.String("http://tracker/" + name),
		"info": encoding.Dict{
			"name":   encoding.String(name),
			"length": encoding.Int(1),
		},
	})
}

func TestGenerateOrdersResultsAndCollectsErrors(t *testing.T) {
	f := &fakeFetcher{files: map[string][]byte{}}
	sources := []string{}
	for i := 0; i < 10; i++ {
		src := fmt.Sprintf("file-%d.torrent", i)
		f.files[src] = torrentNamed(src)
		sources = append(sources, src)
	}
	f.files["broken.torrent"] = []byte("d4:info")
	f.files["noinfo.torrent"] = []byte("de")
	sources = append(sources, "broken.torrent", "missing.torrent", "noinfo.torrent", "file-0.torrent")

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	m := manager.New(f, manager.WithConcurrency(4), manager.WithLogger(log))
	results, err := m.Generate(context.Background(), sources)

	require.Len(t, results, 10)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, fmt.Sprintf("file-%d.torrent", i), r.Source)
		assert.Equal(t, r.Source, r.Link.Name)
	}
	assert.Equal(t, int64(13), f.calls.Load(), "duplicate source should be fetched once")

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
	assert.ErrorIs(t, err, encoding.ErrUnexpectedEnd)
	assert.ErrorIs(t, err, fetch.ErrTransferFailed)
	assert.ErrorIs(t, err, infohash.ErrMissingInfoDictionary)

	var srcErr *manager.SourceErr
	require.True(t, errors.As(err, &srcErr))
	assert.NotEmpty(t, srcErr.Source)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 3, warnings)
}

func TestGenerateNoSources(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	m := manager.New(&fakeFetcher{}, manager.WithLogger(log))

	results, err := m.Generate(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestGenerateCancelled(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	f := &fakeFetcher{files: map[string][]byte{"a": torrentNamed("a")}}
	m := manager.New(f, manager.WithLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := m.Generate(ctx, []string{"a"})
	assert.Empty(t, results)
	assert.ErrorIs(t, err, context.Canceled)
}
