package imageio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/masker/internal/logging"
)

// Fetch errors.
var (
	// ErrUnsupportedScheme is returned by Fetch for URLs it cannot retrieve
	// over HTTP; callers fall back to DecodeDirect.
	ErrUnsupportedScheme = errors.New("imageio: unsupported URL scheme")

	// ErrHTTPStatus is returned when the server answers with a non-2xx status.
	ErrHTTPStatus = errors.New("imageio: unexpected HTTP status")
)

// Cross-origin credential modes, named after the HTML crossorigin attribute.
const (
	CrossOriginNone           = ""
	CrossOriginAnonymous      = "anonymous"
	CrossOriginUseCredentials = "use-credentials"
)

// maxFetchBytes bounds the size of a fetched image body.
const maxFetchBytes = 256 << 20

// Fetcher retrieves images over HTTP.
//
// Cookies from Jar are only sent when the request asks for the
// use-credentials mode.
type Fetcher struct {
	Client *http.Client
	Jar    http.CookieJar
}

// Fetch downloads and decodes the image at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, crossOrigin string) (image.Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("imageio: parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("imageio: build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client(crossOrigin).Do(req)
	if err != nil {
		return nil, fmt.Errorf("imageio: fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	return Decode(io.LimitReader(resp.Body, maxFetchBytes))
}

func (f *Fetcher) client(crossOrigin string) *http.Client {
	base := f.Client
	if base == nil {
		base = http.DefaultClient
	}
	c := *base
	if crossOrigin == CrossOriginUseCredentials {
		if f.Jar != nil {
			c.Jar = f.Jar
		}
	} else {
		c.Jar = nil
	}
	return &c
}

// DecodeDirect decodes a source without going through HTTP: a data URI, a
// file:// URL or a plain file path.
func DecodeDirect(src string) (image.Image, error) {
	if IsDataURI(src) {
		return DecodeDataURI(src)
	}
	path := src
	if strings.HasPrefix(src, "file://") {
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("imageio: parse URL: %w", err)
		}
		path = u.Path
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imageio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Loader fetches an image over HTTP and falls back to decoding the source
// directly when the fetch fails or the source is not an HTTP URL.
type Loader struct {
	Fetcher Fetcher
}

// Load returns the decoded image for src. When both paths fail the returned
// error joins both causes.
func (l *Loader) Load(ctx context.Context, src, crossOrigin string) (image.Image, error) {
	img, fetchErr := l.Fetcher.Fetch(ctx, src, crossOrigin)
	if fetchErr == nil {
		return img, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !errors.Is(fetchErr, ErrUnsupportedScheme) {
		logging.Get().Warn("imageio: fetch failed, decoding directly", "error", fetchErr)
	}

	img, err := DecodeDirect(src)
	if err != nil {
		return nil, errors.Join(fetchErr, err)
	}
	return img, nil
}
