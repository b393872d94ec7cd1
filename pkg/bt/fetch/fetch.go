package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/jackc/puddle"
	"go.uber.org/multierr"
)

const (
	DefaultMaxSize     = 10 * 1024 * 1024
	DefaultConcurrency = 4
)

var ErrTransferFailed = errors.New("transfer failed")

// TransferError wraps whatever went wrong while obtaining the torrent bytes. It matches
// ErrTransferFailed with errors.Is and unwraps to the underlying cause.
type TransferError struct {
	Source string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrTransferFailed, e.Source, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func (e *TransferError) Is(target error) bool {
	return target == ErrTransferFailed
}

// Fetcher reads torrent files from disk or over http(s)
type Fetcher struct {
	client      *http.Client
	maxSize     int64
	concurrency int

	// buffers bounds the number of transfers in flight and recycles their read buffers
	buffers *puddle.Pool
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithMaxSize rejects sources larger than n bytes
func WithMaxSize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxSize = n
		}
	}
}

// WithConcurrency limits how many transfers run at once
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      http.DefaultClient,
		maxSize:     DefaultMaxSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.buffers = puddle.NewPool(
		func(context.Context) (interface{}, error) {
			return new(bytes.Buffer), nil
		},
		func(interface{}) {},
		int32(f.concurrency),
	)

	return f
}

func (f *Fetcher) Close() {
	f.buffers.Close()
}

// Fetch returns the bytes behind source, which is either an http(s) URL, a file:// URL or a
// path on disk.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	res, err := f.buffers.Acquire(ctx)
	if err != nil {
		return nil, &TransferError{Source: source, Err: err}
	}
	defer res.Release()

	buf := res.Value().(*bytes.Buffer)
	buf.Reset()

	lower := strings.ToLower(source)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		err = f.fetchHTTP(ctx, source, buf)
	case strings.HasPrefix(lower, "file://"):
		err = f.readFile(ctx, source[len("file://"):], buf)
	default:
		err = f.readFile(ctx, source, buf)
	}
	if err != nil {
		return nil, &TransferError{Source: source, Err: err}
	}

	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, source string, buf *bytes.Buffer) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return fmt.Errorf("http request creation failure: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, resp.Body.Close())
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request failure - status code: %d", resp.StatusCode)
	}

	return f.copyLimited(buf, resp.Body)
}

func (f *Fetcher) readFile(ctx context.Context, path string, buf *bytes.Buffer) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, fd.Close())
	}()

	return f.copyLimited(buf, fd)
}

func (f *Fetcher) copyLimited(buf *bytes.Buffer, r io.Reader) error {
	n, err := buf.ReadFrom(io.LimitReader(r, f.maxSize+1))
	if err != nil {
		return err
	}
	if n > f.maxSize {
		return fmt.Errorf("torrent is larger than %d bytes", f.maxSize)
	}
	return nil
}
