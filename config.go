package fetchax

import (
	"io"
	"log/slog"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/ansel1/merry"
)

// HTTP constants.
const (
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	MediaTypeJSON          = "application/json"
	MediaTypeXML           = "application/xml"
	MediaTypeForm          = "application/x-www-form-urlencoded"
	MediaTypeMultipartForm = "multipart/form-data"
	MediaTypeOctetStream   = "application/octet-stream"
)

// ErrInvalidResponseType is returned when a ResponseType is not one of the
// recognized decoding strategies.
var ErrInvalidResponseType = merry.New("invalid response type")

// ResponseType selects how a response body is decoded.  The zero value means
// undeclared: the decoding is inferred from the response's Content-Type.
type ResponseType string

// Recognized response types.
const (
	ResponseTypeArrayBuffer ResponseType = "arraybuffer"
	ResponseTypeBlob        ResponseType = "blob"
	ResponseTypeJSON        ResponseType = "json"
	ResponseTypeText        ResponseType = "text"
	ResponseTypeStream      ResponseType = "stream"
	ResponseTypeFormData    ResponseType = "formdata"
)

// Valid reports whether t is a recognized response type.  The empty
// ResponseType is not valid, though it is a legal Config value.
func (t ResponseType) Valid() bool {
	switch t {
	case ResponseTypeArrayBuffer, ResponseTypeBlob, ResponseTypeJSON,
		ResponseTypeText, ResponseTypeStream, ResponseTypeFormData:
		return true
	}
	return false
}

// ParseResponseType converts s to a ResponseType.  An empty string parses
// to the undeclared ResponseType.
func ParseResponseType(s string) (ResponseType, error) {
	t := ResponseType(s)
	if t == "" || t.Valid() {
		return t, nil
	}
	return "", merry.Prepend(ErrInvalidResponseType, s)
}

// Config drives a single request.  A Client holds a default Config, each call
// builds a per-call Config from its Options, and the two are merged with Merge
// into the resolved Config used for dispatch.
//
// Fields left at their zero value are treated as unset, so they never
// override a value coming from the defaults.
type Config struct {
	// URL is the requested URL.  Relative URLs are joined to BaseURL.
	URL string

	// BaseURL is prepended to URL when URL is relative.
	BaseURL string

	// Header supplies the request headers.  Keys are compared
	// case-insensitively, in their canonical form.
	Header http.Header

	// ThrowError, when true, turns responses with a status >= 300 into
	// a *StatusError.  Nil means unset, which resolves to false.
	ThrowError *bool

	// ResponseType forces the decoding of the response body.  When empty,
	// application/json responses are decoded as JSON and anything else is
	// returned as the raw body.
	ResponseType ResponseType

	RequestInterceptor          Interceptor[*Config]
	ResponseInterceptor         Interceptor[*http.Response]
	ResponseRejectedInterceptor RejectedInterceptor

	// Data is the request body, for POST, PUT and PATCH.  Values which
	// are already a body (string, []byte, io.Reader, *Blob, url.Values,
	// *FormData) are sent as is.  Anything else is marshaled with Marshaler.
	Data interface{}

	// Params are appended to the query string of the composed URL.
	Params url.Values

	// Marshaler marshals Data when it is not already a body.  Defaults
	// to DefaultMarshaler.
	Marshaler Marshaler

	// Unmarshaler decodes json responses.  Defaults to DefaultUnmarshaler.
	Unmarshaler Unmarshaler

	// Into, if set, receives the decoded json response body, and becomes
	// the Response's Data.
	Into interface{}

	// Logger receives parse-failure warnings.  Defaults to slog.Default().
	Logger *slog.Logger

	////////////////////////////////////////////////////////////////
	//                                                            //
	//  Transport passthrough.  These are handed to the Doer      //
	//  unmodified.                                               //
	//                                                            //
	////////////////////////////////////////////////////////////////

	// Doer sends the request.  Defaults to http.DefaultClient.
	Doer Doer

	// Middleware wraps the Doer.  Middleware will be invoked in the order
	// it is in this slice.
	Middleware []Middleware

	// advanced options, not typically used.  If not sure, leave them
	// blank.
	GetBody          func() (io.ReadCloser, error)
	ContentLength    int64
	TransferEncoding []string
	Close            bool
	Host             string
	Trailer          http.Header
}

// Bool returns a pointer to b.  Handy for setting Config.ThrowError in
// a literal.
func Bool(b bool) *bool {
	return &b
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	v2 := make(url.Values, len(v))
	for key, value := range v {
		v2[key] = append([]string(nil), value...)
	}
	return v2
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	h2 := make(http.Header, len(h))
	for key, value := range h {
		h2[key] = append([]string(nil), value...)
	}
	return h2
}

// Clone returns a deep copy of the Config.  Data and Into are shared.
func (c *Config) Clone() *Config {
	c2 := *c
	c2.Header = cloneHeader(c.Header)
	c2.Trailer = cloneHeader(c.Trailer)
	c2.Params = cloneValues(c.Params)
	if c.ThrowError != nil {
		c2.ThrowError = Bool(*c.ThrowError)
	}
	if c.Middleware != nil {
		c2.Middleware = append([]Middleware(nil), c.Middleware...)
	}
	if c.TransferEncoding != nil {
		c2.TransferEncoding = append([]string(nil), c.TransferEncoding...)
	}
	return &c2
}

// Headers returns the Header, initializing it if necessary.  Never returns nil.
func (c *Config) Headers() http.Header {
	if c.Header == nil {
		c.Header = http.Header{}
	}
	return c.Header
}

// Query returns the Params, initializing them if necessary.  Never returns nil.
func (c *Config) Query() url.Values {
	if c.Params == nil {
		c.Params = url.Values{}
	}
	return c.Params
}

// ThrowsError returns the resolved value of ThrowError.
func (c *Config) ThrowsError() bool {
	return c.ThrowError != nil && *c.ThrowError
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Config) unmarshaler() Unmarshaler {
	if c.Unmarshaler == nil {
		return DefaultUnmarshaler
	}
	return c.Unmarshaler
}

// Merge combines a default Config with a per-call Config, returning a new
// Config.  Neither argument is modified, and either may be nil.
//
// Fields set in call win over fields set in defaults.  Headers are merged
// key by key, with call's values replacing defaults' values for the same
// key.  Interceptors present on both sides are chained, defaults first.
// Middleware is concatenated, defaults first.
func Merge(defaults, call *Config) *Config {
	if defaults == nil {
		defaults = &Config{}
	}
	if call == nil {
		call = &Config{}
	}

	m := defaults.Clone()

	if call.URL != "" {
		m.URL = call.URL
	}
	if call.BaseURL != "" {
		m.BaseURL = call.BaseURL
	}
	m.Header = mergeHeader(mergeHeader(nil, defaults.Header), call.Header)
	if call.ThrowError != nil {
		m.ThrowError = Bool(*call.ThrowError)
	}
	if call.ResponseType != "" {
		m.ResponseType = call.ResponseType
	}

	m.RequestInterceptor = Chain(defaults.RequestInterceptor, call.RequestInterceptor)
	m.ResponseInterceptor = Chain(defaults.ResponseInterceptor, call.ResponseInterceptor)
	m.ResponseRejectedInterceptor = ChainRejected(defaults.ResponseRejectedInterceptor, call.ResponseRejectedInterceptor)
	if len(call.Middleware) > 0 {
		m.Middleware = append(m.Middleware, call.Middleware...)
	}

	if call.Data != nil {
		m.Data = call.Data
	}
	if call.Params != nil {
		m.Params = cloneValues(call.Params)
	}
	if call.Marshaler != nil {
		m.Marshaler = call.Marshaler
	}
	if call.Unmarshaler != nil {
		m.Unmarshaler = call.Unmarshaler
	}
	if call.Into != nil {
		m.Into = call.Into
	}
	if call.Logger != nil {
		m.Logger = call.Logger
	}
	if call.Doer != nil {
		m.Doer = call.Doer
	}
	if call.GetBody != nil {
		m.GetBody = call.GetBody
	}
	if call.ContentLength != 0 {
		m.ContentLength = call.ContentLength
	}
	if call.TransferEncoding != nil {
		m.TransferEncoding = append([]string(nil), call.TransferEncoding...)
	}
	if call.Close {
		m.Close = true
	}
	if call.Host != "" {
		m.Host = call.Host
	}
	if call.Trailer != nil {
		m.Trailer = mergeHeader(mergeHeader(nil, defaults.Trailer), call.Trailer)
	}

	return m
}

// mergeHeader sets every key of src into dst, replacing dst's values.  Keys
// are canonicalized, so "content-type" and "Content-Type" are the same key.
func mergeHeader(dst, src http.Header) http.Header {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(http.Header, len(src))
	}
	for key, values := range src {
		dst[textproto.CanonicalMIMEHeaderKey(key)] = append([]string(nil), values...)
	}
	return dst
}

// presets are the defaults every Client starts from, beneath its own
// default Config.
func presets() *Config {
	return &Config{
		Header:       http.Header{HeaderContentType: []string{MediaTypeJSON}},
		ThrowError:   Bool(true),
		ResponseType: ResponseTypeJSON,
	}
}
