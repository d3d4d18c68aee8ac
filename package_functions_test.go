package fetchax_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	. "github.com/gemalto/fetchax"
	"github.com/gemalto/fetchax/clientserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testContextKey string

const colorContextKey = testContextKey("color")

func TestRequest(t *testing.T) {
	req, err := Request(
		context.WithValue(context.Background(), colorContextKey, "green"),
		http.MethodGet,
		"http://blue.com/red",
	)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "http://blue.com/red", req.URL.String())
	assert.Equal(t, "green", req.Context().Value(colorContextKey))
	assert.Equal(t, MediaTypeJSON, req.Header.Get(HeaderContentType))
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.True(t, Default().Defaults().ThrowsError())
}

func TestPackageVerbs(t *testing.T) {
	cs := clientserver.New(nil)
	defer cs.Close()

	cs.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"method":"` + r.Method + `"}`))
	})

	ctx := context.Background()
	u := cs.URL + "/red"

	verbs := map[string]func() (*Response, error){
		http.MethodGet:    func() (*Response, error) { return Get(ctx, u) },
		http.MethodDelete: func() (*Response, error) { return Delete(ctx, u) },
		http.MethodPost:   func() (*Response, error) { return Post(ctx, u, "{}") },
		http.MethodPut:    func() (*Response, error) { return Put(ctx, u, "{}") },
		http.MethodPatch:  func() (*Response, error) { return Patch(ctx, u, "{}") },
		"OPTIONS":         func() (*Response, error) { return Do(ctx, "OPTIONS", u) },
	}
	for method, send := range verbs {
		t.Run(method, func(t *testing.T) {
			resp, err := send()
			require.NoError(t, err)
			assert.Equal(t, method, resp.Path("method").String())
			assert.Equal(t, method, cs.LastSrvReq.Method)
		})
	}

	t.Run(http.MethodHead, func(t *testing.T) {
		resp, err := Head(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status)
		assert.Empty(t, resp.Raw())
		assert.Implements(t, (*io.ReadCloser)(nil), resp.Data)
	})

	t.Run("rejection", func(t *testing.T) {
		cs.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(404)
		})
		_, err := Get(ctx, u)
		assert.Equal(t, 404, StatusCode(err))
	})
}
