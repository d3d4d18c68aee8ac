package fetchax

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/ansel1/merry"
)

// Blob is an opaque binary body with a media type.  It can be sent as
// request Data, and is what a ResponseTypeBlob response decodes to.
type Blob struct {
	Type  string
	Bytes []byte
}

// Size returns the number of bytes in the blob.
func (b *Blob) Size() int {
	return len(b.Bytes)
}

// Reader returns a reader over the blob's bytes.
func (b *Blob) Reader() io.Reader {
	return bytes.NewReader(b.Bytes)
}

// Text returns the blob's bytes as a string.
func (b *Blob) Text() string {
	return string(b.Bytes)
}

type formPart struct {
	name     string
	value    string
	filename string
	content  []byte
}

// FormData is a multipart/form-data request body.  Parts are written in the
// order they were appended.
type FormData struct {
	parts []formPart
}

// NewFormData returns an empty FormData.
func NewFormData() *FormData {
	return &FormData{}
}

// Append adds a field.
func (f *FormData) Append(name, value string) *FormData {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// AppendFile adds a file part.
func (f *FormData) AppendFile(name, filename string, content []byte) *FormData {
	f.parts = append(f.parts, formPart{name: name, filename: filename, content: content})
	return f
}

// encode writes the parts with a fresh boundary, and returns the body and
// its Content-Type, boundary included.
func (f *FormData) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, p := range f.parts {
		if p.filename == "" {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", merry.Prepend(err, "writing form field")
			}
			continue
		}
		pw, err := w.CreateFormFile(p.name, p.filename)
		if err != nil {
			return nil, "", merry.Prepend(err, "writing form file")
		}
		if _, err := pw.Write(p.content); err != nil {
			return nil, "", merry.Prepend(err, "writing form file")
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", merry.Wrap(err)
	}
	return buf, w.FormDataContentType(), nil
}

// EnsureBody turns request Data into a network body.
//
// Values that already are a body pass through: string, []byte, io.Reader,
// *Blob, url.Values and *FormData.  The last three carry their own
// Content-Type, which is returned.  nil yields a nil body.
//
// Anything else is a structured value, and is marshaled with m, or with
// DefaultMarshaler if m is nil.  The Marshaler's content type is returned.
func EnsureBody(data interface{}, m Marshaler) (body io.Reader, contentType string, err error) {
	switch v := data.(type) {
	case nil:
		return nil, "", nil
	case string:
		return strings.NewReader(v), "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case *Blob:
		return v.Reader(), v.Type, nil
	case url.Values:
		return strings.NewReader(v.Encode()), contentTypeForm, nil
	case *FormData:
		return v.encode()
	case io.Reader:
		return v, "", nil
	default:
		if m == nil {
			m = DefaultMarshaler
		}
		b, ct, err := m.Marshal(data)
		if err != nil {
			return nil, "", merry.Prepend(err, "marshaling request body")
		}
		return bytes.NewReader(b), ct, nil
	}
}
