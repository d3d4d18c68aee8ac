// Package httptestutil contains utilities for use in HTTP tests, particular when using
// httptest.Server.
//
// Inspect() can be used to intercept and inspect the traffic to and from an httptest.Server,
// and Client() builds a fetchax Client which talks to it.
package httptestutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gemalto/fetchax"
)

// Client creates a fetchax Client which is pre-configured to send requests to
// the test server.  The Client's BaseURL is the server's URL, and it uses
// the server's own client (and TLS certs, for a TLS server).  opts are
// applied after those defaults.
func Client(ts *httptest.Server, opts ...fetchax.Option) *fetchax.Client {
	return fetchax.MustCreate(append([]fetchax.Option{
		fetchax.BaseURL(ts.URL),
		fetchax.WithDoer(ts.Client()),
	}, opts...)...)
}

// Inspect installs and returns an Inspector.  The Inspector captures exchanges with the
// test server.  It's useful in tests to inspect the incoming requests and request bodies
// and the outgoing responses and response bodies.
//
// Inspect wraps and replaces the server's Handler.  It should be called after the real
// Handler has been installed.
func Inspect(ts *httptest.Server) *Inspector {
	i := NewInspector(0)
	ts.Config.Handler = i.Wrap(ts.Config.Handler)
	return i
}

// Echo returns a handler which responds with the request's body and
// Content-Type, and a 200 status.  The request's method and query string are
// returned in the X-Echo-Method and X-Echo-Query headers.
func Echo() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("X-Echo-Method", r.Method)
		w.Header().Set("X-Echo-Query", r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
		if r.Body != nil {
			_, _ = io.Copy(w, r.Body)
		}
	})
}
