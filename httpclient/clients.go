// Package httpclient builds the *http.Client a fetchax Client sends its
// requests with.
//
// Its Options cover the transport-level settings a fetch() caller would pass
// in a RequestInit: redirect policy, credentials (cookies), keepalive, plus
// the usual Go knobs like timeouts, TLS verification and proxies.
//
// Example:
//
//	c, err := httpclient.New(
//	    httpclient.Redirect(httpclient.RedirectManual),
//	    httpclient.Credentials(httpclient.CredentialsInclude),
//	    httpclient.Timeout(10 * time.Second),
//	)
package httpclient

import (
	"crypto/tls"
	"net/http"

	"github.com/ansel1/merry"
)

// New returns an *http.Client with the options applied.  It starts out
// like http.DefaultClient, but with a transport of its own, so options
// never touch http.DefaultTransport.
func New(opts ...Option) (*http.Client, error) {
	c := &http.Client{Transport: newTransport()}
	if err := Apply(c, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply applies options to an existing client.  Nil options are skipped.
func Apply(c *http.Client, opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.Apply(c); err != nil {
			return merry.Prepend(err, "configuring http client")
		}
	}
	return nil
}

func newTransport() *http.Transport {
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		return t.Clone()
	}
	return &http.Transport{Proxy: http.ProxyFromEnvironment, ForceAttemptHTTP2: true}
}

// Option configures an *http.Client.  Apply is never passed nil.
type Option interface {
	Apply(*http.Client) error
}

// OptionFunc adapts a function to the Option interface.
type OptionFunc func(*http.Client) error

// Apply implements Option.
func (f OptionFunc) Apply(c *http.Client) error {
	return f(c)
}

// TransportOption configures the client's *http.Transport, installing a
// fresh one if the client has none.  Clients with some other RoundTripper
// fail with an error.
type TransportOption func(transport *http.Transport) error

// Apply implements Option.
func (f TransportOption) Apply(c *http.Client) error {
	if c.Transport == nil {
		c.Transport = newTransport()
	}
	t, ok := c.Transport.(*http.Transport)
	if !ok {
		return merry.Errorf("transport options need an *http.Transport, the client has a %T", c.Transport)
	}
	return f(t)
}

// TLSOption configures the transport's TLS settings, creating an empty
// *tls.Config if there is none yet.
type TLSOption func(c *tls.Config) error

// Apply implements Option.
func (f TLSOption) Apply(c *http.Client) error {
	return TransportOption(func(t *http.Transport) error {
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{}
		}
		return f(t.TLSClientConfig)
	}).Apply(c)
}
