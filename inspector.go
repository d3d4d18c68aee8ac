package fetchax

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net/http"
)

// Inspector is an Option which records the last call made through it: the
// Config the request was built from, the request sent, and the raw response
// received, with copies of both bodies.  It's meant for tests:
//
//	var i fetchax.Inspector
//	resp, err := client.Get(ctx, "/todos/1", &i)
//	fmt.Println(i.Config.URL, i.Request.URL, i.ResponseBody)
//
// Responses are recorded before they are parsed or rejected, so a call
// which fails with a *StatusError still leaves its response here.
//
// Both bodies are read into memory, so don't use it outside of tests.
type Inspector struct {
	// Config is the resolved Config, after the request interceptors which
	// ran before the Inspector was applied.
	Config *Config

	Request     *http.Request
	RequestBody *bytes.Buffer

	Response     *http.Response
	ResponseBody *bytes.Buffer

	// BodyErr is the error which cut reading either body short.  The
	// recorded body holds what was read before it, and the body passed on
	// returns the same bytes, then the error.
	BodyErr error
}

// Clear resets the inspector.
func (i *Inspector) Clear() {
	*i = Inspector{}
}

// Apply implements Option.  It installs a request interceptor and a middleware.
func (i *Inspector) Apply(c *Config) error {
	return c.Apply(
		RequestInterceptor(func(_ context.Context, cfg *Config) (*Config, error) {
			i.Config = cfg
			return cfg, nil
		}),
		Middleware(i.MiddlewareFunc),
	)
}

// MiddlewareFunc implements Middleware.
func (i *Inspector) MiddlewareFunc(next Doer) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		i.Request = req
		var bodyErr error
		req.Body, i.RequestBody, bodyErr = tee(req.Body)
		i.BodyErr = bodyErr

		resp, err := next.Do(req)
		i.Response = resp
		if resp != nil {
			resp.Body, i.ResponseBody, bodyErr = tee(resp.Body)
			if i.BodyErr == nil {
				i.BodyErr = bodyErr
			}
		}
		return resp, err
	})
}

// tee reads and closes body, returning a replacement reader over the same
// bytes and a copy of them.  A nil body stays nil.  If reading fails, the
// replacement fails the same way after the bytes which were read.
func tee(body io.ReadCloser) (io.ReadCloser, *bytes.Buffer, error) {
	if body == nil {
		return nil, nil, nil
	}
	b, err := ioutil.ReadAll(body)
	body.Close()
	var r io.Reader = bytes.NewReader(b)
	if err != nil {
		r = io.MultiReader(r, failingReader{err})
	}
	return ioutil.NopCloser(r), bytes.NewBuffer(b), err
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) {
	return 0, f.err
}
