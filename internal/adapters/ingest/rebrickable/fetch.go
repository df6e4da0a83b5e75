package rebrickable

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	perr "brickdump/internal/platform/errors"

	"github.com/klauspost/compress/gzip"
)

// DefaultTimeout bounds one download including the body transfer
const DefaultTimeout = 60 * time.Second

// HTTPFetcher fetches directly from the CDN
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcherWithTimeout creates a new HTTPFetcher; d <= 0 uses DefaultTimeout
func NewHTTPFetcherWithTimeout(d time.Duration) *HTTPFetcher {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &HTTPFetcher{Client: &http.Client{Timeout: d}}
}

// Fetch downloads url and gunzips the full body
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	raw, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	out, err := Gunzip(raw)
	if err != nil {
		return nil, perr.Wrapf(err, perr.CodeOf(err), "rebrickable: decode %s", url)
	}
	return out, nil
}

// Download returns the raw response body of a successful GET
func (f *HTTPFetcher) Download(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "rebrickable: build request for %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNetwork, "rebrickable: get %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, perr.Networkf("rebrickable: unexpected status %d for %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNetwork, "rebrickable: read body of %s", url)
	}
	return body, nil
}

// Gunzip inflates a complete gzip payload
func Gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDecode, "rebrickable: open gzip")
	}
	defer func() { _ = zr.Close() }()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDecode, "rebrickable: inflate gzip")
	}
	return out, nil
}
