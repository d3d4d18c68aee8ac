package fetchax

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ansel1/merry"
	"github.com/tidwall/gjson"
)

// maxFormMemory bounds the memory used to hold multipart file parts; larger
// parts spill to temporary files.
const maxFormMemory = 32 << 20

// Response is the parsed result of a request.
//
// Data holds the decoded body, according to the resolved ResponseType:
//
//	arraybuffer  []byte
//	blob         *Blob
//	json         the Into value if one was configured, else interface{}
//	             (map[string]interface{}, []interface{}, float64, ...)
//	text         string
//	formdata     *multipart.Form
//	stream       io.ReadCloser, unread
//
// With no ResponseType and a Content-Type other than application/json, for
// an empty json body, and whenever reading or decoding fails, Data is the raw
// body as an io.ReadCloser.
// Close releases it.
type Response struct {
	Data       interface{}
	Status     int
	StatusText string
	Header     http.Header

	raw []byte
}

// Raw returns the body bytes which were read to decode Data.  It is nil for
// stream and undecoded responses, whose bodies are not read.
func (r *Response) Raw() []byte {
	return r.raw
}

// Path looks up a value in a JSON body with a gjson path, like "user.name"
// or "items.#.id".
func (r *Response) Path(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Close closes Data if it is a stream.  Safe to call on any response.
func (r *Response) Close() error {
	if c, ok := r.Data.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// As returns the response's Data as a T.  If Data is not a T, but the
// body was read, the raw body is unmarshaled as JSON into a new T.
func As[T any](resp *Response) (T, error) {
	var zero T
	if resp == nil {
		return zero, merry.New("nil response")
	}
	switch v := resp.Data.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	if resp.raw == nil {
		return zero, merry.Errorf("response data is %T, not %T", resp.Data, zero)
	}
	var t T
	if err := json.Unmarshal(resp.raw, &t); err != nil {
		return zero, merry.Prepend(err, "decoding response body")
	}
	return t, nil
}

// ParseResponse parses resp with the default unmarshaler and logger.  See
// Response for how the body is decoded.
func ParseResponse(resp *http.Response, declared ResponseType) *Response {
	return parseResponse(resp, &Config{ResponseType: declared})
}

// parseResponse resolves the response type, and decodes the body.  It never
// fails: a body which cannot be decoded is returned raw.
func parseResponse(resp *http.Response, cfg *Config) *Response {
	r := &Response{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
	}

	typ := resolveResponseType(cfg.ResponseType, resp.Header)
	if typ == "" || typ == ResponseTypeStream {
		r.Data = bodyOrEmpty(resp.Body)
		return r
	}

	raw, err := readBody(resp)
	if err != nil {
		cfg.logger().Warn("fetchax: reading response body failed",
			"response_type", string(typ), "status", resp.StatusCode, "error", err)
		r.Data = ioutil.NopCloser(bytes.NewReader(raw))
		return r
	}
	r.raw = raw

	if typ == ResponseTypeJSON && len(bytes.TrimSpace(raw)) == 0 {
		// nothing to decode, e.g. 204 or HEAD
		r.Data = ioutil.NopCloser(bytes.NewReader(raw))
		return r
	}

	data, err := decodeBody(raw, typ, resp.Header.Get(HeaderContentType), cfg)
	if err != nil {
		cfg.logger().Warn("fetchax: decoding response body failed, returning raw body",
			"response_type", string(typ), "status", resp.StatusCode, "error", err)
		r.Data = ioutil.NopCloser(bytes.NewReader(raw))
		return r
	}
	r.Data = data
	return r
}

// resolveResponseType returns the declared type if there is one, json for
// application/json responses, and otherwise "", meaning the raw body.
func resolveResponseType(declared ResponseType, h http.Header) ResponseType {
	if declared != "" {
		return declared
	}
	if mediaType(h.Get(HeaderContentType)) == MediaTypeJSON {
		return ResponseTypeJSON
	}
	return ""
}

func decodeBody(raw []byte, typ ResponseType, contentType string, cfg *Config) (interface{}, error) {
	switch typ {
	case ResponseTypeArrayBuffer:
		return raw, nil
	case ResponseTypeText:
		return string(raw), nil
	case ResponseTypeBlob:
		return &Blob{Type: contentType, Bytes: raw}, nil
	case ResponseTypeFormData:
		return decodeForm(raw, contentType)
	case ResponseTypeJSON:
		if cfg.Into != nil {
			if err := cfg.unmarshaler().Unmarshal(raw, contentType, cfg.Into); err != nil {
				return nil, err
			}
			return cfg.Into, nil
		}
		var v interface{}
		if err := cfg.unmarshaler().Unmarshal(raw, contentType, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, merry.Prepend(ErrInvalidResponseType, string(typ))
}

// decodeForm decodes multipart/form-data and
// application/x-www-form-urlencoded bodies.  Urlencoded fields land in the
// Value map of the returned form.
func decodeForm(raw []byte, contentType string) (*multipart.Form, error) {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, merry.Prepend(err, "parsing content type")
	}
	switch mt {
	case MediaTypeMultipartForm:
		boundary := params["boundary"]
		if boundary == "" {
			return nil, merry.New("multipart content type has no boundary")
		}
		form, err := multipart.NewReader(bytes.NewReader(raw), boundary).ReadForm(maxFormMemory)
		if err != nil {
			return nil, merry.Prepend(err, "reading multipart form")
		}
		return form, nil
	case MediaTypeForm:
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, merry.Prepend(err, "parsing form")
		}
		return &multipart.Form{Value: values, File: map[string][]*multipart.FileHeader{}}, nil
	}
	return nil, merry.Errorf("content type %q is not a form", mt)
}

// mediaType returns the portion of a Content-Type before any parameters.
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// statusText strips the code from resp.Status ("404 Not Found" becomes
// "Not Found").
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if t := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); t != "" {
		return t
	}
	return http.StatusText(resp.StatusCode)
}

func bodyOrEmpty(body io.ReadCloser) io.ReadCloser {
	if body == nil {
		return http.NoBody
	}
	return body
}

// maxSizeHint caps how much of the buffer readBody allocates up front.
const maxSizeHint = 1 << 20

func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return []byte{}, nil
	}

	defer resp.Body.Close()

	// the content length is only a hint from the server
	buf := bytes.Buffer{}
	if resp.ContentLength > 0 && resp.ContentLength <= maxSizeHint {
		buf.Grow(int(resp.ContentLength))
	}
	_, err := buf.ReadFrom(resp.Body)
	body := buf.Bytes()
	if body == nil {
		body = []byte{}
	}
	if err != nil {
		return body, merry.Prepend(err, "reading response body")
	}
	return body, nil
}
