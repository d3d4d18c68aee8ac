// Package clientserver pairs an httptest.Server with a fetchax.Client
// which sends to it, for tests.
//
// The pair records the last exchange on both ends: the Config and request
// the client built, the response it got back (rejected or not), and the
// request the server handled.
package clientserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gemalto/fetchax"
)

// ClientServer is an httptest.Server and a *fetchax.Client whose BaseURL and
// transport point at it.  The client's methods can be called directly:
//
//	cs := clientserver.New(nil)
//	defer cs.Close()
//	resp, err := cs.Get(ctx, "/todos")
//
// Close it at the end of the test.
type ClientServer struct {
	*httptest.Server
	*fetchax.Client

	// Handler serves the requests, after the ClientServer has recorded them.
	Handler http.Handler

	mu sync.Mutex

	// Recorded during each call, reset with Clear.

	// LastConfig is the client's resolved Config, after the default request
	// interceptors.
	LastConfig *fetchax.Config
	// LastClientReq is the last request the client sent.
	LastClientReq *http.Request
	// LastClientResp is the last raw response the client got.
	LastClientResp *http.Response
	// LastRejection is the *StatusError of the last rejected response.
	LastRejection error
	// LastSrvReq is the last request the server handled.
	LastSrvReq *http.Request
}

// New wraps s, starting a new server with no handler if s is nil.  s's
// handler becomes the ClientServer's Handler.  options are added to the
// client's defaults.
//
// Panics if the options are invalid.
func New(s *httptest.Server, options ...fetchax.Option) *ClientServer {
	if s == nil {
		s = httptest.NewServer(nil)
	}
	cs := &ClientServer{
		Server:  s,
		Handler: s.Config.Handler,
	}
	s.Config.Handler = cs

	opts := []fetchax.Option{
		fetchax.BaseURL(s.URL),
		fetchax.WithDoer(s.Client()),
		fetchax.Use(cs.recordExchange),
	}
	opts = append(opts, options...)
	opts = append(opts,
		fetchax.RequestInterceptor(cs.recordConfig),
		fetchax.ResponseRejectedInterceptor(cs.recordRejection),
	)
	cs.Client = fetchax.MustCreate(opts...)
	return cs
}

// Close shuts down the server.
func (cs *ClientServer) Close() {
	cs.Server.Close()
}

// Clear resets the recorded exchange.
func (cs *ClientServer) Clear() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.LastConfig = nil
	cs.LastClientReq = nil
	cs.LastClientResp = nil
	cs.LastRejection = nil
	cs.LastSrvReq = nil
}

// ServeHTTP records the request, then passes it to Handler.  With no
// Handler, the response is an empty 200.
func (cs *ClientServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	cs.mu.Lock()
	cs.LastSrvReq = req
	h := cs.Handler
	cs.mu.Unlock()
	if h != nil {
		h.ServeHTTP(w, req)
	}
}

// Mux returns the Handler if it is a *http.ServeMux, and otherwise installs
// a new one as the Handler.
func (cs *ClientServer) Mux() *http.ServeMux {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if m, ok := cs.Handler.(*http.ServeMux); ok {
		return m
	}
	m := http.NewServeMux()
	cs.Handler = m
	return m
}

// HandlerFunc installs hf as the Handler.
func (cs *ClientServer) HandlerFunc(hf http.HandlerFunc) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.Handler = hf
}

func (cs *ClientServer) recordConfig(_ context.Context, cfg *fetchax.Config) (*fetchax.Config, error) {
	cs.mu.Lock()
	cs.LastConfig = cfg
	cs.LastRejection = nil
	cs.mu.Unlock()
	return cfg, nil
}

func (cs *ClientServer) recordRejection(_ context.Context, err error) error {
	cs.mu.Lock()
	cs.LastRejection = err
	cs.mu.Unlock()
	return err
}

func (cs *ClientServer) recordExchange(next fetchax.Doer) fetchax.Doer {
	return fetchax.DoerFunc(func(req *http.Request) (*http.Response, error) {
		cs.mu.Lock()
		cs.LastClientReq = req
		cs.mu.Unlock()

		resp, err := next.Do(req)

		cs.mu.Lock()
		cs.LastClientResp = resp
		cs.mu.Unlock()
		return resp, err
	})
}
