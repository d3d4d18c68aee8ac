package fetchax

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/ansel1/merry"
)

// Client sends requests built from a default Config merged with per-call
// Options.
//
// A Client is created with Create(), which takes the Options making up its
// default Config:
//
//	client, err := fetchax.Create(
//	    fetchax.BaseURL("https://api.example.com"),
//	    fetchax.BearerAuth(token),
//	)
//
// Every verb method accepts Options which apply to that call only:
//
//	resp, err := client.Get(ctx, "/todos/1", fetchax.ThrowError(false))
//	resp, err := client.Post(ctx, "/todos", todo, fetchax.Header("X-Trace", id))
//
// Each call resolves its Config in layers: the presets
// (Content-Type: application/json, ThrowError: true, ResponseType: json),
// then the Client's defaults, then the call's Options.  Later layers win,
// headers are merged key by key, and interceptors are chained.
//
// A Client is never modified after Create, and is safe for concurrent use.
type Client struct {
	defaults *Config
}

// Create returns a new Client, whose default Config is built from the options.
func Create(opts ...Option) (*Client, error) {
	cfg := &Config{}
	if err := cfg.Apply(opts...); err != nil {
		return nil, merry.Wrap(err)
	}
	return &Client{defaults: Merge(presets(), cfg)}, nil
}

// MustCreate creates a new Client, applying all options.  If
// an error occurs applying options, this will panic.
func MustCreate(opts ...Option) *Client {
	c, err := Create(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Defaults returns a copy of the Client's default Config, presets included.
func (c *Client) Defaults() *Config {
	return c.defaults.Clone()
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, opts...)
}

// Head sends a HEAD request.
func (c *Client) Head(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodHead, rawURL, opts...)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, rawURL, opts...)
}

// Post sends a POST request with data as the body.  A nil data leaves
// Config.Data as configured.
func (c *Client) Post(ctx context.Context, rawURL string, data interface{}, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodPost, rawURL, withData(data, opts)...)
}

// Put sends a PUT request with data as the body.
func (c *Client) Put(ctx context.Context, rawURL string, data interface{}, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodPut, rawURL, withData(data, opts)...)
}

// Patch sends a PATCH request with data as the body.
func (c *Client) Patch(ctx context.Context, rawURL string, data interface{}, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, rawURL, withData(data, opts)...)
}

// withData appends a Data option after opts, so the data argument of the
// write verbs wins over a Data option.
func withData(data interface{}, opts []Option) []Option {
	if data == nil {
		return opts
	}
	return append(append(make([]Option, 0, len(opts)+1), opts...), Data(data))
}

// Do sends a request with an arbitrary method.
//
// The request goes through these stages:
//
//  1. The Client's defaults and the call's options are merged.
//  2. The request interceptors run on the resolved Config.
//  3. The URL is composed, the body is serialized (POST, PUT and PATCH
//     only), and the request is sent with the Doer, wrapped in the
//     middleware.  Transport errors are returned unmodified.
//  4. If ThrowError resolved true and the status is 300 or more, the
//     response is parsed, and a *StatusError is passed through the
//     rejected interceptors.  Do returns whatever error they produce.
//  5. Otherwise the response interceptors run on the *http.Response, and
//     the result is parsed into a *Response.
//
// ctx is attached to the request, and cancels it.
func (c *Client) Do(ctx context.Context, method, rawURL string, opts ...Option) (*Response, error) {
	cfg, err := c.resolve(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}

	req, err := newRequest(ctx, method, cfg)
	if err != nil {
		return nil, err
	}

	resp, err := send(cfg, req)
	if err != nil {
		// middleware may hand back a response along with the error
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	if resp == nil {
		return nil, merry.New("doer returned a nil response")
	}

	if cfg.ThrowsError() && resp.StatusCode >= 300 {
		var rejection error = &StatusError{
			StatusCode: resp.StatusCode,
			Response:   parseResponse(resp, cfg),
		}
		if cfg.ResponseRejectedInterceptor != nil {
			rejection = cfg.ResponseRejectedInterceptor(ctx, rejection)
		}
		return nil, rejection
	}

	if cfg.ResponseInterceptor != nil {
		resp, err = cfg.ResponseInterceptor(ctx, resp)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, merry.New("response interceptor returned a nil response")
		}
	}

	return parseResponse(resp, cfg), nil
}

// Request builds the *http.Request a call with these arguments would send,
// request interceptors included, without sending it.
func (c *Client) Request(ctx context.Context, method, rawURL string, opts ...Option) (*http.Request, error) {
	cfg, err := c.resolve(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	return newRequest(ctx, method, cfg)
}

// resolve merges the call's options over the defaults, and runs the request
// interceptors.
func (c *Client) resolve(ctx context.Context, rawURL string, opts []Option) (*Config, error) {
	call := &Config{URL: rawURL}
	if err := call.Apply(opts...); err != nil {
		return nil, err
	}

	cfg := Merge(c.defaults, call)
	if cfg.RequestInterceptor == nil {
		return cfg, nil
	}

	cfg, err := cfg.RequestInterceptor(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, merry.New("request interceptor returned a nil config")
	}
	return cfg, nil
}

// newRequest composes the URL and body of cfg into an *http.Request.
func newRequest(ctx context.Context, method string, cfg *Config) (*http.Request, error) {
	u, err := BuildURL(cfg.BaseURL, cfg.URL, cfg.Params)
	if err != nil {
		return nil, err
	}

	var (
		body            io.Reader
		bodyContentType string
	)
	if hasBody(method) {
		body, bodyContentType, err = EnsureBody(cfg.Data, cfg.Marshaler)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, merry.Prepend(err, "creating request")
	}

	// copy Headers pairs into new Header map
	for k, v := range cfg.Header {
		req.Header[k] = append([]string(nil), v...)
	}

	// form and multipart bodies carry their own content type, boundary
	// included, which beats the configured one.  Marshaled bodies only
	// supply one if none was configured.
	switch {
	case bodyContentType == "":
	case ownsContentType(cfg.Data):
		req.Header.Set(HeaderContentType, bodyContentType)
	case req.Header.Get(HeaderContentType) == "":
		req.Header.Set(HeaderContentType, bodyContentType)
	}

	if cfg.ContentLength != 0 {
		req.ContentLength = cfg.ContentLength
	}
	if cfg.GetBody != nil {
		req.GetBody = cfg.GetBody
	}
	if cfg.Host != "" {
		req.Host = cfg.Host
	}
	if cfg.TransferEncoding != nil {
		req.TransferEncoding = cfg.TransferEncoding
	}
	req.Close = cfg.Close
	req.Trailer = cfg.Trailer

	return req, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func ownsContentType(data interface{}) bool {
	switch data.(type) {
	case *FormData, *Blob, url.Values:
		return true
	}
	return false
}

func send(cfg *Config, req *http.Request) (*http.Response, error) {
	var doer Doer = http.DefaultClient
	if cfg.Doer != nil {
		doer = cfg.Doer
	}
	return Wrap(doer, cfg.Middleware...).Do(req)
}
