package fetchax

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/ansel1/merry"
)

// MockDoer returns a Doer which answers every request with a response built
// by MockResponse.  The request is attached to the response.
func MockDoer(statusCode int, options ...Option) DoerFunc {
	return func(req *http.Request) (*http.Response, error) {
		resp := MockResponse(statusCode, options...)
		resp.Request = req
		return resp, nil
	}
}

// FailingDoer returns a Doer which fails every request with err, the way a
// transport does when the server is unreachable.
func FailingDoer(err error) DoerFunc {
	return func(*http.Request) (*http.Response, error) {
		return nil, err
	}
}

// ChannelDoer returns a Doer which answers each request with the next
// response sent on the channel, blocking until there is one.  Once the
// channel is closed, requests fail.
func ChannelDoer() (chan<- *http.Response, DoerFunc) {
	input := make(chan *http.Response, 1)

	return input, func(req *http.Request) (*http.Response, error) {
		resp, ok := <-input
		if !ok {
			return nil, merry.New("mock response channel closed")
		}
		resp.Request = req
		return resp, nil
	}
}

// MockResponse creates an *http.Response from the Options.  The Options build
// a Config: its Header becomes the response header, and its Data is turned
// into the response body the same way request bodies are, so structs are
// marshaled to JSON.  A body's own Content-Type is used if the options
// don't set one.
//
// Panics if the options or the body are invalid.
func MockResponse(statusCode int, options ...Option) *http.Response {
	cfg := &Config{}
	if err := cfg.Apply(options...); err != nil {
		panic(err)
	}

	body, ct, err := EnsureBody(cfg.Data, cfg.Marshaler)
	if err != nil {
		panic(err)
	}

	var b []byte
	if body != nil {
		b, err = ioutil.ReadAll(body)
		if err != nil {
			panic(err)
		}
	}

	h := cloneHeader(cfg.Header)
	if h == nil {
		h = http.Header{}
	}
	if ct != "" && h.Get(HeaderContentType) == "" {
		h.Set(HeaderContentType, ct)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		StatusCode:    statusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          ioutil.NopCloser(bytes.NewReader(b)),
		ContentLength: int64(len(b)),
	}
}

// MockHandler returns an http.Handler which writes a response built by
// MockResponse for every request.  Invalid options panic right away, rather
// than in the handler.
func MockHandler(statusCode int, options ...Option) http.Handler {
	MockResponse(statusCode, options...)

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, MockResponse(statusCode, options...))
	})
}

// ChannelHandler returns an http.Handler which writes the next response sent
// on the channel, blocking until there is one.
func ChannelHandler() (chan<- *http.Response, http.Handler) {
	input := make(chan *http.Response, 1)

	return input, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp, ok := <-input
		if !ok {
			http.Error(w, "mock response channel closed", http.StatusServiceUnavailable)
			return
		}
		writeResponse(w, resp)
	})
}

func writeResponse(w http.ResponseWriter, resp *http.Response) {
	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != nil {
		_, _ = io.Copy(w, resp.Body)
		resp.Body.Close()
	}
}
