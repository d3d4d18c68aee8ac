// Package output formats requests and responses for the fetchax command.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/gemalto/fetchax"
)

// Formatter formats requests and responses as text.
type Formatter struct {
	Verbose bool
	Colors  *ColorScheme
}

// NewFormatter creates a new formatter.  With color false, the output has
// no escape codes.
func NewFormatter(verbose, color bool) *Formatter {
	colors := NoColorScheme()
	if color {
		colors = DefaultColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		Colors:  colors,
	}
}

// FormatRequest formats the request line, and the headers if verbose.
func (f *Formatter) FormatRequest(req *http.Request) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "▶ %s %s\n", f.Colors.Method.Sprint(req.Method), f.Colors.URL.Sprint(req.URL.String()))
	if f.Verbose {
		f.writeHeaders(&buf, req.Header)
	}
	return buf.String()
}

// FormatResponse formats the status line with the elapsed time, the headers
// if verbose, then the body.  JSON bodies are indented.
func (f *Formatter) FormatResponse(resp *fetchax.Response, elapsed time.Duration) string {
	var buf strings.Builder
	status := fmt.Sprintf("%d %s", resp.Status, resp.StatusText)
	fmt.Fprintf(&buf, "◀ %s (%dms)\n", f.Colors.Status(resp.Status).Sprint(strings.TrimSpace(status)), elapsed.Milliseconds())
	if f.Verbose {
		f.writeHeaders(&buf, resp.Header)
	}

	body, err := Body(resp)
	switch {
	case err != nil:
		fmt.Fprintf(&buf, "%s\n", f.Colors.Error.Sprint("error reading body: "+err.Error()))
	case len(body) > 0:
		buf.WriteString(FormatJSON(body))
		buf.WriteString("\n")
	}
	return buf.String()
}

// FormatError formats an error message.
func (f *Formatter) FormatError(err error) string {
	return f.Colors.Error.Sprint("✗ "+err.Error()) + "\n"
}

func (f *Formatter) writeHeaders(w io.Writer, h http.Header) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			fmt.Fprintf(w, "  %s: %s\n", f.Colors.HeaderKey.Sprint(k), f.Colors.HeaderValue.Sprint(v))
		}
	}
}

// Body returns the body bytes of resp, whatever its Data holds.  Stream
// bodies are read, and replaced in Data by their bytes.
func Body(resp *fetchax.Response) ([]byte, error) {
	if raw := resp.Raw(); raw != nil {
		return raw, nil
	}
	switch v := resp.Data.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case *fetchax.Blob:
		return v.Bytes, nil
	case io.Reader:
		b, err := ioutil.ReadAll(v)
		resp.Close()
		if err != nil {
			return b, merry.Prepend(err, "reading response body")
		}
		resp.Data = b
		return b, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, merry.Prepend(err, "encoding response data")
		}
		return b, nil
	}
}

// FormatJSON indents b if it is JSON, and otherwise returns it unchanged.
func FormatJSON(b []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, b, "", "  "); err != nil {
		return string(b)
	}
	return pretty.String()
}
