package manager

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/burmudar/bt-magnet/pkg/bt/magnet"
	"github.com/burmudar/bt-magnet/pkg/bt/types"
)

const DefaultConcurrency = 3

// Fetcher obtains the raw bytes of a torrent source
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Result is the magnet link generated for one source
type Result struct {
	Index  int
	Source string
	Link   *magnet.Link
}

// SourceErr records which source failed
type SourceErr struct {
	Source string
	Err    error
}

func (e *SourceErr) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceErr) Unwrap() error {
	return e.Err
}

type job struct {
	index  int
	source string
}

// MagnetManager generates magnet links for many sources concurrently
type MagnetManager struct {
	fetcher     Fetcher
	concurrency int
	log         logrus.FieldLogger
	magnetOpts  []magnet.Option
}

type Option func(*MagnetManager)

func WithConcurrency(n int) Option {
	return func(m *MagnetManager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(m *MagnetManager) {
		m.log = log
	}
}

func WithMagnetOptions(opts ...magnet.Option) Option {
	return func(m *MagnetManager) {
		m.magnetOpts = append(m.magnetOpts, opts...)
	}
}

func New(f Fetcher, opts ...Option) *MagnetManager {
	m := &MagnetManager{
		fetcher:     f,
		concurrency: DefaultConcurrency,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate fetches every source and builds its magnet link. Duplicate sources are processed
// once. Results come back in input order. A failing source does not stop the others; all
// failures are returned together as a *multierror.Error of *SourceErr.
func (m *MagnetManager) Generate(ctx context.Context, sources []string) ([]*Result, error) {
	queue := types.NewSyncQueue[job]()
	seen := types.NewSyncSet[string]()
	for i, src := range sources {
		if !seen.PutIfAbsent(src) {
			m.log.WithField("source", src).Debug("skipping duplicate source")
			continue
		}
		queue.Add(job{index: i, source: src})
	}

	var (
		mu      sync.Mutex
		results []*Result
		allErrs error
	)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.concurrency; i++ {
		id := i
		g.Go(func() error {
			log := m.log.WithField("worker", id)
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				work, ok := queue.Pop()
				if !ok {
					log.Debug("no more work")
					return nil
				}

				link, err := m.generateOne(ctx, work.source)
				mu.Lock()
				if err != nil {
					log.WithField("source", work.source).WithError(err).Warn("failed to generate magnet link")
					allErrs = multierror.Append(allErrs, &SourceErr{Source: work.source, Err: err})
				} else {
					log.WithField("source", work.source).WithField("infohash", link.InfoHash.HexString()).Debug("magnet link generated")
					results = append(results, &Result{Index: work.index, Source: work.source, Link: link})
				}
				mu.Unlock()
			}
		})
	}

	if err := g.Wait(); err != nil {
		allErrs = multierror.Append(allErrs, err)
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Index < results[b].Index
	})

	return results, allErrs
}

func (m *MagnetManager) generateOne(ctx context.Context, source string) (*magnet.Link, error) {
	raw, err := m.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return magnet.Generate(raw, m.magnetOpts...)
}
