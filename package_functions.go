package fetchax

import (
	"context"
	"net/http"
	"sync"
)

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

// Default returns the Client used by the package-level functions.  It is
// created on first use, with no default configuration beyond the presets,
// and is never modified afterwards.
func Default() *Client {
	defaultClientOnce.Do(func() {
		defaultClient = MustCreate()
	})
	return defaultClient
}

// Get does the same as Client.Get(), using the Default() client.
func Get(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return Default().Get(ctx, rawURL, opts...)
}

// Head does the same as Client.Head(), using the Default() client.
func Head(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return Default().Head(ctx, rawURL, opts...)
}

// Delete does the same as Client.Delete(), using the Default() client.
func Delete(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	return Default().Delete(ctx, rawURL, opts...)
}

// Post does the same as Client.Post(), using the Default() client.
func Post(ctx context.Context, rawURL string, data interface{}, opts ...Option) (*Response, error) {
	return Default().Post(ctx, rawURL, data, opts...)
}

// Put does the same as Client.Put(), using the Default() client.
func Put(ctx context.Context, rawURL string, data interface{}, opts ...Option) (*Response, error) {
	return Default().Put(ctx, rawURL, data, opts...)
}

// Patch does the same as Client.Patch(), using the Default() client.
func Patch(ctx context.Context, rawURL string, data interface{}, opts ...Option) (*Response, error) {
	return Default().Patch(ctx, rawURL, data, opts...)
}

// Do does the same as Client.Do(), using the Default() client.
func Do(ctx context.Context, method, rawURL string, opts ...Option) (*Response, error) {
	return Default().Do(ctx, method, rawURL, opts...)
}

// Request does the same as Client.Request(), using the Default() client.
func Request(ctx context.Context, method, rawURL string, opts ...Option) (*http.Request, error) {
	return Default().Request(ctx, method, rawURL, opts...)
}
