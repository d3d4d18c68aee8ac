package httpclient

import (
	"crypto/tls"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/ansel1/merry"
)

// RedirectPolicy is how the client handles 3xx responses.
type RedirectPolicy string

// Redirect policies.
const (
	// RedirectFollow follows redirects, up to net/http's limit of 10.
	RedirectFollow RedirectPolicy = "follow"
	// RedirectError fails the request when the server redirects.
	RedirectError RedirectPolicy = "error"
	// RedirectManual returns the 3xx response itself.
	RedirectManual RedirectPolicy = "manual"
)

// ErrRedirect is returned by the client for redirects under RedirectError.
var ErrRedirect = merry.New("redirect not allowed")

// CredentialsMode is whether the client stores and sends cookies.
type CredentialsMode string

// Credentials modes.
const (
	// CredentialsOmit never stores or sends cookies.
	CredentialsOmit CredentialsMode = "omit"
	// CredentialsSameOrigin sends cookies back to the host which set them.
	CredentialsSameOrigin CredentialsMode = "same-origin"
	// CredentialsInclude is the same as CredentialsSameOrigin; a cookie
	// jar never sends a cookie to a host which doesn't match it.
	CredentialsInclude CredentialsMode = "include"
)

// Redirect sets the client's redirect policy.
func Redirect(policy RedirectPolicy) Option {
	return OptionFunc(func(client *http.Client) error {
		switch policy {
		case RedirectFollow, "":
			client.CheckRedirect = nil
		case RedirectError:
			client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
				return merry.Prepend(ErrRedirect, req.URL.String())
			}
		case RedirectManual:
			client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			}
		default:
			return merry.Errorf("unknown redirect policy: %q", policy)
		}
		return nil
	})
}

// NoRedirects configures the client to no perform any redirects.
func NoRedirects() Option {
	return Redirect(RedirectManual)
}

// MaxRedirects configures the max number of redirects the client will perform before
// giving up.
func MaxRedirects(max int) Option {
	return OptionFunc(func(client *http.Client) error {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= max {
				return merry.Errorf("stopped after max %d requests", len(via))
			}
			return nil
		}
		return nil
	})
}

// Credentials sets whether the client keeps cookies.  CredentialsOmit
// removes the client's cookie jar, the other modes install one.
func Credentials(mode CredentialsMode) Option {
	return OptionFunc(func(client *http.Client) error {
		switch mode {
		case CredentialsOmit:
			client.Jar = nil
			return nil
		case CredentialsSameOrigin, CredentialsInclude:
			return CookieJar(nil).Apply(client)
		}
		return merry.Errorf("unknown credentials mode: %q", mode)
	})
}

// CookieJar installs a cookie jar into the client, configured with the options argument.
//
// The argument may be nil.
func CookieJar(opts *cookiejar.Options) Option {
	return OptionFunc(func(client *http.Client) error {
		jar, err := cookiejar.New(opts)
		if err != nil {
			return merry.Wrap(err)
		}
		client.Jar = jar
		return nil
	})
}

// KeepAlive enables or disables connection reuse.
func KeepAlive(keepAlive bool) Option {
	return TransportOption(func(t *http.Transport) error {
		t.DisableKeepAlives = !keepAlive
		return nil
	})
}

// ProxyURL will proxy all calls through a single proxy URL.
func ProxyURL(proxyURL string) Option {
	return TransportOption(func(t *http.Transport) error {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return merry.Wrap(err)
		}
		t.Proxy = http.ProxyURL(u)
		return nil
	})
}

// Timeout configures the client's Timeout property.
func Timeout(d time.Duration) Option {
	return OptionFunc(func(client *http.Client) error {
		client.Timeout = d
		return nil
	})
}

// SkipVerify sets the TLS config's InsecureSkipVerify flag.
func SkipVerify(skip bool) Option {
	return TLSOption(func(c *tls.Config) error {
		c.InsecureSkipVerify = skip
		return nil
	})
}
