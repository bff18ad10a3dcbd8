package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/a11yscan/internal/log"
)

// Defaults used by NewClient.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 5 * 1024 * 1024
	DefaultUserAgent   = "a11yscan (+https://github.com/nao1215/a11yscan)"

	maxRedirects = 10
)

// Resource is a fetched document or stylesheet.
type Resource struct {
	// URL is the final location, after redirects.
	URL *url.URL
	// ContentType is the media type without parameters, lowercased.
	ContentType string
	// Body is the raw content.
	Body []byte
}

// Client fetches resources from HTTP servers and the local filesystem.
// A Client is safe for concurrent use.
type Client struct {
	http        *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	site        *site
	logger      *slog.Logger
}

// site holds credentials sent to one host only.
type site struct {
	host    string
	cookie  string
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout of every HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize limits the size of every resource, in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithSite sends cookie and headers with every request to host.
// Requests to other hosts, such as a CDN serving stylesheets, get neither.
func WithSite(host, cookie string, headers map[string]string) Option {
	return func(c *Client) {
		if host == "" || (cookie == "" && len(headers) == 0) {
			return
		}
		c.site = &site{host: strings.ToLower(host), cookie: cookie, headers: headers}
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its transport is still
// wrapped to add the site credentials.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.http
	hc.Timeout = c.timeout
	if c.site != nil {
		hc.Transport = &siteTransport{base: base, site: c.site}
	}
	c.http = &hc
	return c
}

// Fetch reads the resource at location.
func (c *Client) Fetch(ctx context.Context, location string) (*Resource, error) {
	u, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
		return c.fetchHTTP(ctx, u)
	case "file":
		return c.fetchFile(u)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// ParseLocation turns a target into a URL. Anything without an http(s) or
// file scheme is a local path, made absolute.
func ParseLocation(location string) (*url.URL, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			if u.Host == "" {
				return nil, fmt.Errorf("invalid URL %q: missing host", location)
			}
			return u, nil
		case "file":
			return u, nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
		}
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", location, err)
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

func (c *Client) fetchHTTP(ctx context.Context, u *url.URL) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/css;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", log.RedactURL(u.String()), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("fetched",
		"url", u.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned %d", ErrHTTPStatus, log.RedactURL(u.String()), resp.StatusCode)
	}

	body, err := c.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", log.RedactURL(u.String()), err)
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	return &Resource{
		URL:         final,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
		Body:        body,
	}, nil
}

func (c *Client) fetchFile(u *url.URL) (*Resource, error) {
	path := filepath.FromSlash(u.Path)
	f, err := os.Open(path) //nolint:gosec // auditing a user-chosen file is the point
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	body, err := c.readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c.logger.Debug("read file", "path", path, "size", humanize.IBytes(uint64(len(body))))

	return &Resource{
		URL:         u,
		ContentType: mediaType(mime.TypeByExtension(filepath.Ext(path))),
		Body:        body,
	}, nil
}

// readLimited reads r fully, failing when it holds more than maxBodySize bytes.
func (c *Client) readLimited(r io.Reader) ([]byte, error) {
	if c.maxBodySize <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, c.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w (%s)", ErrBodyTooLarge, humanize.IBytes(uint64(c.maxBodySize)))
	}
	return body, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}

// IsHTML reports whether a media type is an HTML document. An unknown type
// is accepted: local files without extension and servers without
// Content-Type are common.
func IsHTML(contentType string) bool {
	switch contentType {
	case "", "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// siteTransport adds the site credentials to requests for the site host.
type siteTransport struct {
	base http.RoundTripper
	site *site
}

// RoundTrip implements http.RoundTripper.
func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.EqualFold(req.URL.Host, t.site.host) && !strings.EqualFold(req.URL.Hostname(), t.site.host) {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	if t.site.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.site.cookie)
		} else {
			clone.Header.Set("Cookie", t.site.cookie)
		}
	}
	for k, v := range t.site.headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}

// SameOrigin reports whether a and b share scheme, host and port.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	if !strings.EqualFold(a.Scheme, b.Scheme) {
		return false
	}
	if strings.EqualFold(a.Scheme, "file") {
		return true
	}
	return strings.EqualFold(a.Hostname(), b.Hostname()) && effectivePort(a) == effectivePort(b)
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return ""
}
