package watermark

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alnah/go-notepages/internal/fileutil"
)

// DefaultMaxSourceBytes bounds a watermark image read from any source.
const DefaultMaxSourceBytes = 10 << 20

// Loader reads watermark image sources: local paths, data URIs and HTTP(S)
// URLs. Remote requests carry the configured headers and are rate limited.
type Loader struct {
	client   *http.Client
	headers  http.Header
	limiter  *rate.Limiter
	maxBytes int64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for remote sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithHeader adds a request header sent with every remote fetch, such as a
// Referer required by an image host.
func WithHeader(key, value string) LoaderOption {
	return func(l *Loader) {
		l.headers.Add(key, value)
	}
}

// WithRateLimit allows one remote fetch every interval with the given burst.
// A non-positive interval disables limiting.
func WithRateLimit(interval time.Duration, burst int) LoaderOption {
	return func(l *Loader) {
		if interval <= 0 {
			l.limiter = nil
			return
		}
		l.limiter = rate.NewLimiter(rate.Every(interval), max(burst, 1))
	}
}

// WithMaxSourceBytes bounds the size of a loaded source.
func WithMaxSourceBytes(n int64) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// NewLoader creates a Loader. By default remote fetches time out after 30s
// and are limited to two per second.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: 30 * time.Second},
		headers:  make(http.Header),
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		maxBytes: DefaultMaxSourceBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the raw bytes of source.
func (l *Loader) Load(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "data:"):
		return l.loadDataURI(source)
	case fileutil.IsURL(source):
		return l.loadRemote(ctx, source)
	default:
		return l.loadFile(source)
	}
}

func (l *Loader) loadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, info.Size())
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected watermark file
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	return data, nil
}

func (l *Loader) loadDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: only base64 data URIs are supported", ErrSourceFetch)
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > l.maxBytes {
		return nil, fmt.Errorf("%w: data URI", ErrSourceTooLarge)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	return data, nil
}

func (l *Loader) loadRemote(ctx context.Context, url string) ([]byte, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceFetch, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	for key, values := range l.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrSourceFetch, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrSourceTooLarge, url)
	}
	return data, nil
}
