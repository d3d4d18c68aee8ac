package fetchax

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ansel1/merry"
	"github.com/gemalto/fetchax/httpclient"
)

// Option applies some setting to a Config.  Options are passed to Create,
// to configure a Client's defaults, and to each request method, to configure
// a single call.
type Option interface {

	// Apply modifies the Config argument.  The Config pointer will never be nil.
	// Returning an error will stop applying the rest of the Options, and the error
	// will float up to the original caller.
	Apply(*Config) error
}

// OptionFunc adapts a function to the Option interface.
type OptionFunc func(*Config) error

// Apply implements Option.
func (f OptionFunc) Apply(c *Config) error {
	return f(c)
}

// With clones the Config, then applies the options to the clone.
func (c *Config) With(opts ...Option) (*Config, error) {
	c2 := c.Clone()
	err := c2.Apply(opts...)
	if err != nil {
		return nil, err
	}
	return c2, nil
}

// Apply applies the options to the receiver.
func (c *Config) Apply(opts ...Option) error {
	for _, o := range opts {
		if o == nil {
			continue
		}
		err := o.Apply(c)
		if err != nil {
			return merry.Prepend(err, "applying options")
		}
	}
	return nil
}

// WithConfig merges cfg into the Config being built, as Merge would.
// Useful for passing a whole per-call Config literal:
//
//	resp, err := client.Get(ctx, "/todos", fetchax.WithConfig(&fetchax.Config{
//	    ThrowError: fetchax.Bool(false),
//	}))
func WithConfig(cfg *Config) Option {
	return OptionFunc(func(c *Config) error {
		*c = *Merge(c, cfg)
		return nil
	})
}

// URL sets the requested URL.  Returns an error if arg is not
// a valid URL.
func URL(u string) Option {
	return OptionFunc(func(c *Config) error {
		if _, err := url.Parse(u); err != nil {
			return merry.Prepend(ErrInvalidURL, err.Error())
		}
		c.URL = u
		return nil
	})
}

// BaseURL sets Config.BaseURL, which relative request URLs are joined to.
func BaseURL(u string) Option {
	return OptionFunc(func(c *Config) error {
		if _, err := url.Parse(u); err != nil {
			return merry.Prepend(ErrInvalidURL, err.Error())
		}
		c.BaseURL = u
		return nil
	})
}

// AddHeader adds a header value, using Header.Add()
func AddHeader(key, value string) Option {
	return OptionFunc(func(c *Config) error {
		c.Headers().Add(key, value)
		return nil
	})
}

// Header sets a header value, using Header.Set()
func Header(key, value string) Option {
	return OptionFunc(func(c *Config) error {
		c.Headers().Set(key, value)
		return nil
	})
}

// DeleteHeader deletes a header key, using Header.Del()
func DeleteHeader(key string) Option {
	return OptionFunc(func(c *Config) error {
		c.Header.Del(key)
		return nil
	})
}

// BasicAuth sets the Authorization header to "Basic <encoded username and password>".
// If username and password are empty, it deletes the Authorization header.
func BasicAuth(username, password string) Option {
	if username == "" && password == "" {
		return DeleteHeader(HeaderAuthorization)
	}
	return Header(HeaderAuthorization, "Basic "+basicAuth(username, password))
}

// basicAuth returns the base64 encoded username:password for basic auth copied
// from net/http.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// BearerAuth sets the Authorization header to "Bearer <token>".
// If the token is empty, it deletes the Authorization header.
func BearerAuth(token string) Option {
	if token == "" {
		return DeleteHeader(HeaderAuthorization)
	}
	return Header(HeaderAuthorization, "Bearer "+token)
}

// Accept sets the Accept header.
func Accept(accept string) Option {
	return Header(HeaderAccept, accept)
}

// ContentType sets the Content-Type header.
func ContentType(contentType string) Option {
	return Header(HeaderContentType, contentType)
}

// ThrowError sets Config.ThrowError.
func ThrowError(b bool) Option {
	return OptionFunc(func(c *Config) error {
		c.ThrowError = Bool(b)
		return nil
	})
}

// WithResponseType sets Config.ResponseType.  Returns an error if t is not a
// recognized response type.
func WithResponseType(t ResponseType) Option {
	return OptionFunc(func(c *Config) error {
		if !t.Valid() {
			return merry.Prepend(ErrInvalidResponseType, string(t))
		}
		c.ResponseType = t
		return nil
	})
}

// RequestInterceptor adds an interceptor which runs on the resolved Config
// before the request is composed.  It is chained after any request
// interceptor already configured.
func RequestInterceptor(i Interceptor[*Config]) Option {
	return OptionFunc(func(c *Config) error {
		c.RequestInterceptor = Chain(c.RequestInterceptor, i)
		return nil
	})
}

// ResponseInterceptor adds an interceptor which runs on a successful
// *http.Response before it is parsed.  It is chained after any response
// interceptor already configured.
func ResponseInterceptor(i Interceptor[*http.Response]) Option {
	return OptionFunc(func(c *Config) error {
		c.ResponseInterceptor = Chain(c.ResponseInterceptor, i)
		return nil
	})
}

// ResponseRejectedInterceptor adds an interceptor which runs on the
// *StatusError of a rejected response.  It is chained after any rejected
// interceptor already configured.
func ResponseRejectedInterceptor(i RejectedInterceptor) Option {
	return OptionFunc(func(c *Config) error {
		c.ResponseRejectedInterceptor = ChainRejected(c.ResponseRejectedInterceptor, i)
		return nil
	})
}

// Data sets Config.Data, the request body of POST, PUT and PATCH requests.
func Data(data interface{}) Option {
	return OptionFunc(func(c *Config) error {
		c.Data = data
		return nil
	})
}

// QueryParams adds params to Config.Params.
// The arguments may be either map[string][]string, map[string]string, url.Values, or a struct.
// The argument values are added to Config.Params.
//
// If the arg is a struct, the struct is marshaled into a url.Values object using
// the github.com/google/go-querystring/query package.  Structs should tag
// their members with the "url" tag, e.g.:
//
//	type ReqParams struct {
//	    Color string `url:"color"`
//	}
//
// An error will be returned if marshaling the struct fails.
func QueryParams(queryStructs ...interface{}) Option {
	return OptionFunc(func(c *Config) error {
		for _, queryStruct := range queryStructs {
			values, err := toValues(queryStruct)
			if err != nil {
				return merry.Prepend(err, "invalid query struct")
			}

			// merges new values into existing
			for key, values := range values {
				for _, value := range values {
					c.Query().Add(key, value)
				}
			}
		}
		return nil
	})
}

// QueryParam adds a single query parameter.
func QueryParam(key, value string) Option {
	return OptionFunc(func(c *Config) error {
		c.Query().Add(key, value)
		return nil
	})
}

// WithMarshaler sets Config.Marshaler
func WithMarshaler(m Marshaler) Option {
	return OptionFunc(func(c *Config) error {
		c.Marshaler = m
		return nil
	})
}

// WithUnmarshaler sets Config.Unmarshaler
func WithUnmarshaler(m Unmarshaler) Option {
	return OptionFunc(func(c *Config) error {
		c.Unmarshaler = m
		return nil
	})
}

func joinOpts(opts ...Option) Option {
	return OptionFunc(func(c *Config) error {
		for _, opt := range opts {
			err := opt.Apply(c)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// JSON sets Config.Marshaler to the JSONMarshaler.
// If the arg is true, the generated JSON will be indented.
// It also sets the Content-Type and Accept headers to application/json.
func JSON(indent bool) Option {
	return joinOpts(
		&JSONMarshaler{Indent: indent},
		ContentType(MediaTypeJSON),
		Accept(MediaTypeJSON),
	)
}

// XML sets Config.Marshaler to the XMLMarshaler, and Config.Unmarshaler to
// the MultiUnmarshaler.  If the arg is true, the generated XML will be
// indented.  It also sets the Content-Type and Accept headers to
// application/xml.
func XML(indent bool) Option {
	return joinOpts(
		&XMLMarshaler{Indent: indent},
		WithUnmarshaler(&MultiUnmarshaler{}),
		ContentType(MediaTypeXML),
		Accept(MediaTypeXML),
	)
}

// Form sets Config.Marshaler to the FormMarshaler,
// which marshals the body into form-urlencoded, and sets
// the Content-Type header to match.
func Form() Option {
	return joinOpts(
		&FormMarshaler{},
		ContentType(MediaTypeForm),
	)
}

// Into sets Config.Into.  v should be a pointer; json responses are
// unmarshaled into it, and it becomes the Response's Data.
func Into(v interface{}) Option {
	return OptionFunc(func(c *Config) error {
		c.Into = v
		return nil
	})
}

// Logger sets Config.Logger.
func Logger(l *slog.Logger) Option {
	return OptionFunc(func(c *Config) error {
		c.Logger = l
		return nil
	})
}

// Host sets Config.Host
func Host(host string) Option {
	return OptionFunc(func(c *Config) error {
		c.Host = host
		return nil
	})
}

// HTTPClient replaces Config.Doer with an *http.Client.  The client
// will be created and configured using the httpclient package.
func HTTPClient(opts ...httpclient.Option) Option {
	return OptionFunc(func(c *Config) error {
		hc, err := httpclient.New(opts...)
		if err != nil {
			return err
		}
		c.Doer = hc
		return nil
	})
}

// Use appends middleware to Config.Middleware.  Middleware
// is invoked in the order added.
func Use(m ...Middleware) Option {
	return OptionFunc(func(c *Config) error {
		c.Middleware = append(c.Middleware, m...)
		return nil
	})
}

// WithDoer replaces Config.Doer.  If nil, the request will
// be sent with http.DefaultClient.
func WithDoer(d Doer) Option {
	return OptionFunc(func(c *Config) error {
		c.Doer = d
		return nil
	})
}
