// Package readerclient talks to a joe-reader server the way a browser does:
// it loads pages, submits forms and sends the background read marks.
package readerclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	toggleReadPath = "/toggle-read"

	// RequestedWithFetch marks background requests. The server answers
	// them with 204 instead of redirecting.
	RequestedWithFetch = "fetch"

	maxPageSize = 8 << 20
)

// StatusError is returned for a response outside the 2xx class.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Page is a loaded HTML page and the URL it finally came from.
type Page struct {
	URL  *url.URL
	Body []byte
}

type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// New returns a client for the server at baseURL. A nil httpClient gets a
// 10s timeout. A cookie jar is added when the client has none so session
// flashes and the theme cookie survive between requests.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c := *httpClient
		c.Jar = jar
		httpClient = &c
	}
	return &Client{base: base, http: httpClient, userAgent: "joe-reader-browse/1.0"}, nil
}

// Base returns the server URL the client was created with.
func (c *Client) Base() *url.URL {
	u := *c.base
	return &u
}

// Resolve resolves ref against from, or against the base URL when from is nil.
func (c *Client) Resolve(ref string, from *url.URL) (*url.URL, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	if from == nil {
		from = c.base
	}
	return from.ResolveReference(r), nil
}

// SameOrigin reports whether u is served by the reader itself.
func (c *Client) SameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.base.Scheme) && strings.EqualFold(u.Host, c.base.Host)
}

// Load fetches a page.
func (c *Client) Load(ctx context.Context, u *url.URL) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return c.page(req, "load "+u.RequestURI())
}

// Submit sends a form like a browser. GET forms replace the action's query;
// POST forms are url-encoded with referer as the Referer header. Redirects
// are followed and the final page returned.
func (c *Client) Submit(ctx context.Context, method, action string, values url.Values, referer *url.URL) (*Page, error) {
	target, err := c.Resolve(action, referer)
	if err != nil {
		return nil, fmt.Errorf("resolve form action: %w", err)
	}

	var req *http.Request
	if strings.EqualFold(method, http.MethodPost) {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(values.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		u := *target
		u.RawQuery = values.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
	}
	if referer != nil {
		req.Header.Set("Referer", referer.String())
	}
	return c.page(req, "submit "+target.Path)
}

// MarkRead persists link as read without navigating. Any 2xx is success.
func (c *Client) MarkRead(ctx context.Context, link string) error {
	form := url.Values{}
	form.Set("link", link)
	form.Set("read", "true")

	target := c.base.ResolveReference(&url.URL{Path: toggleReadPath})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", RequestedWithFetch)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mark read request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("mark read", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) page(req *http.Request, op string) (*Page, error) {
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(op, resp)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	return &Page{URL: resp.Request.URL, Body: body}, nil
}

// Reader returns the page body as a reader.
func (p *Page) Reader() io.Reader {
	return bytes.NewReader(p.Body)
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
