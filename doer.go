package fetchax

import "net/http"

// Doer is the transport a Client dispatches requests through.  It is
// implemented by *http.Client.  Doers can be wrapped with Middleware to
// form a stack of client-side middleware.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to implement Doer
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do implements the Doer interface
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Apply implements Option.  It sets the Config's Doer.
func (f DoerFunc) Apply(c *Config) error {
	c.Doer = f
	return nil
}
