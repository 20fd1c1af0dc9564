package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Client fetches pages for the crawler.
//
// Design decision: We use a struct wrapping the http.Client rather than
// passing a client on each call because:
//  1. Request configuration (User-Agent, extra headers, timeout) should be
//     consistent across a crawl
//  2. Connection pooling works better with a shared client
//  3. Tests can inject an httptest server's client
type Client struct {
	// client is the underlying HTTP client.
	client *http.Client

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// headers are extra request headers, typically from per-site config.
	headers map[string]string

	// maxBodySize caps the response body to prevent memory exhaustion.
	// Bodies beyond the cap are truncated, not failed.
	maxBodySize int64

	// timeout is the per-request deadline. Zero means no per-request
	// deadline beyond what the caller's context carries.
	timeout time.Duration
}

// DefaultMaxBodySize caps response bodies at 10MB. Inventory pages are
// text; anything larger is either not a page or not worth inventorying
// past that point.
const DefaultMaxBodySize = 10 * 1024 * 1024

// DefaultUserAgent identifies the crawler politely. Sites that gate on
// User-Agent can be accommodated with WithUserAgent.
const DefaultUserAgent = "webinventory/1.0 (+https://github.com/nao1215/webinventory)"

// maxRedirects bounds redirect chains; net/http's default is the same
// number, made explicit here.
const maxRedirects = 10

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders adds extra headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithMaxBodySize sets the response body cap in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client. Intended for tests
// and callers that need transport-level control (proxies, TLS knobs).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// NewClient creates a fetch client with pooled connections and a bounded
// redirect chain.
func NewClient(opts ...Option) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	c := &Client{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     20 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Response is a fetched page with its body decoded to UTF-8.
type Response struct {
	// URL is the final URL after redirects.
	URL string

	// StatusCode is the HTTP status.
	StatusCode int

	// ContentType is the response media type without parameters,
	// e.g. "text/html". Empty when the server sent none.
	ContentType string

	// Body is the response body, charset-decoded to UTF-8 and capped at
	// the client's body size limit.
	Body []byte
}

// IsHTML reports whether the response looks like an HTML page. Servers
// that omit the Content-Type header get the benefit of the doubt.
func (r *Response) IsHTML() bool {
	return r.ContentType == "" ||
		r.ContentType == "text/html" ||
		r.ContentType == "application/xhtml+xml"
}

// IsXML reports whether the response looks like an XML document, which is
// what sitemaps are served as (when servers bother with a type at all).
func (r *Response) IsXML() bool {
	return r.ContentType == "" ||
		r.ContentType == "text/xml" ||
		r.ContentType == "application/xml" ||
		strings.HasSuffix(r.ContentType, "+xml")
}

// Fetch retrieves the URL. Any failure, transport or HTTP status >= 400,
// is returned as a *Error; the caller decides whether it is fatal.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &Error{URL: rawURL, Err: ErrInvalidURL}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	body := decodeToUTF8(raw, contentType)

	return &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: mediaType,
		Body:        body,
	}, nil
}

// decodeToUTF8 converts the body to UTF-8 using the charset declared in
// the Content-Type header or sniffed from the content. On decode failure
// the raw bytes are returned; the HTML parser tolerates stray bytes better
// than the crawl tolerates losing a page.
func decodeToUTF8(raw []byte, contentType string) []byte {
	enc, _, _ := charset.DetermineEncoding(raw, contentType)
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return decoded
}
