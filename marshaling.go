package fetchax

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/ansel1/merry"
	goquery "github.com/google/go-querystring/query"
)

// Request data which EnsureBody can't send as is goes through a Marshaler,
// and json response bodies are decoded with an Unmarshaler.  Both are
// configured with the WithMarshaler and WithUnmarshaler options, or with the
// JSON(), XML() and Form() presets.  Marshalers and unmarshalers are Options
// themselves, so they can also be passed directly.
//
// Configs which set neither use DefaultMarshaler and DefaultUnmarshaler.

// DefaultMarshaler marshals request data when Config.Marshaler is nil.
// nolint:gochecknoglobals
var DefaultMarshaler Marshaler = &JSONMarshaler{}

// DefaultUnmarshaler decodes json responses when Config.Unmarshaler is nil.
// nolint:gochecknoglobals
var DefaultUnmarshaler Unmarshaler = &JSONMarshaler{}

const (
	contentTypeForm = MediaTypeForm + "; charset=UTF-8"
	contentTypeXML  = MediaTypeXML + "; charset=UTF-8"
	contentTypeJSON = MediaTypeJSON + "; charset=UTF-8"
)

// Marshaler turns request data into body bytes.  A non-empty contentType
// becomes the request's Content-Type, unless one is configured.
type Marshaler interface {
	Marshal(v interface{}) (data []byte, contentType string, err error)
}

// Unmarshaler decodes a response body into v.  contentType is the response's
// Content-Type header.
type Unmarshaler interface {
	Unmarshal(data []byte, contentType string, v interface{}) error
}

// MarshalFunc adapts a function to the Marshaler interface.
type MarshalFunc func(v interface{}) ([]byte, string, error)

// Marshal implements Marshaler.
func (f MarshalFunc) Marshal(v interface{}) ([]byte, string, error) {
	return f(v)
}

// Apply implements Option, installing f as the Marshaler.
func (f MarshalFunc) Apply(c *Config) error {
	c.Marshaler = f
	return nil
}

// UnmarshalFunc adapts a function to the Unmarshaler interface.
type UnmarshalFunc func(data []byte, contentType string, v interface{}) error

// Unmarshal implements Unmarshaler.
func (f UnmarshalFunc) Unmarshal(data []byte, contentType string, v interface{}) error {
	return f(data, contentType, v)
}

// Apply implements Option, installing f as the Unmarshaler.
func (f UnmarshalFunc) Apply(c *Config) error {
	c.Unmarshaler = f
	return nil
}

// JSONMarshaler marshals and unmarshals JSON.  Like JSON.stringify, it
// leaves <, > and & unescaped.  Indent switches to two-space indented output.
type JSONMarshaler struct {
	Indent bool
}

// Marshal implements Marshaler.
func (m *JSONMarshaler) Marshal(v interface{}) ([]byte, string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if m.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, "", merry.Wrap(err)
	}
	// Encode terminates the value with a newline
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), contentTypeJSON, nil
}

// Unmarshal implements Unmarshaler.
func (m *JSONMarshaler) Unmarshal(data []byte, _ string, v interface{}) error {
	return merry.Wrap(json.Unmarshal(data, v))
}

// Apply implements Option.
func (m *JSONMarshaler) Apply(c *Config) error {
	c.Marshaler = m
	return nil
}

// XMLMarshaler marshals and unmarshals XML, indented if Indent is set.
type XMLMarshaler struct {
	Indent bool
}

// Marshal implements Marshaler.
func (m *XMLMarshaler) Marshal(v interface{}) (data []byte, contentType string, err error) {
	if m.Indent {
		data, err = xml.MarshalIndent(v, "", "  ")
	} else {
		data, err = xml.Marshal(v)
	}
	if err != nil {
		return nil, "", merry.Wrap(err)
	}
	return data, contentTypeXML, nil
}

// Unmarshal implements Unmarshaler.
func (*XMLMarshaler) Unmarshal(data []byte, _ string, v interface{}) error {
	return merry.Wrap(xml.Unmarshal(data, v))
}

// Apply implements Option.
func (m *XMLMarshaler) Apply(c *Config) error {
	c.Marshaler = m
	return nil
}

// FormMarshaler marshals data as an application/x-www-form-urlencoded body.
// It accepts the same values as QueryParams: url.Values, map[string][]string,
// map[string]string, or a struct with `url` tags.
type FormMarshaler struct{}

// Marshal implements Marshaler.
func (*FormMarshaler) Marshal(v interface{}) ([]byte, string, error) {
	values, err := toValues(v)
	if err != nil {
		return nil, "", merry.Prepend(err, "invalid form data")
	}
	return []byte(values.Encode()), contentTypeForm, nil
}

// Apply implements Option.
func (m *FormMarshaler) Apply(c *Config) error {
	c.Marshaler = m
	return nil
}

// toValues converts a map or a `url` tagged struct to url.Values.  Structs
// are encoded with github.com/google/go-querystring.
func toValues(v interface{}) (url.Values, error) {
	switch t := v.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		return t, nil
	case map[string][]string:
		return url.Values(t), nil
	case map[string]string:
		values := make(url.Values, len(t))
		for k, s := range t {
			values.Set(k, s)
		}
		return values, nil
	}
	return goquery.Values(v)
}

// MultiUnmarshaler picks the JSON or XML decoder by the response's media
// type.  Structured syntax suffixes count, so application/problem+json
// decodes as JSON and application/atom+xml as XML.  Other media types fail,
// and the response falls back to its raw body.
type MultiUnmarshaler struct {
	jsonMar JSONMarshaler
	xmlMar  XMLMarshaler
}

// Unmarshal implements Unmarshaler.
func (m *MultiUnmarshaler) Unmarshal(data []byte, contentType string, v interface{}) error {
	mt := mediaType(contentType)
	switch {
	case mt == MediaTypeJSON, strings.HasSuffix(mt, "+json"):
		return m.jsonMar.Unmarshal(data, contentType, v)
	case mt == MediaTypeXML, mt == "text/xml", strings.HasSuffix(mt, "+xml"):
		return m.xmlMar.Unmarshal(data, contentType, v)
	}
	return merry.Errorf("unsupported content type: %q", contentType)
}

// Apply implements Option.
func (m *MultiUnmarshaler) Apply(c *Config) error {
	c.Unmarshaler = m
	return nil
}
