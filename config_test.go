package fetchax

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_headers(t *testing.T) {
	t.Run("last write wins", func(t *testing.T) {
		m := Merge(&Config{Header: http.Header{"A": {"1"}}}, &Config{Header: http.Header{"A": {"2"}}})
		assert.Equal(t, http.Header{"A": {"2"}}, m.Header)
	})

	t.Run("keys not in call are kept", func(t *testing.T) {
		m := Merge(
			&Config{Header: http.Header{"A": {"1"}, "B": {"2"}}},
			&Config{Header: http.Header{"A": {"3"}}},
		)
		assert.Equal(t, http.Header{"A": {"3"}, "B": {"2"}}, m.Header)
	})

	t.Run("idempotent", func(t *testing.T) {
		call := &Config{Header: http.Header{"A": {"3"}}}
		once := Merge(&Config{Header: http.Header{"A": {"1"}, "B": {"2"}}}, call)
		twice := Merge(once, call)
		assert.Equal(t, once.Header, twice.Header)
	})

	t.Run("case insensitive keys", func(t *testing.T) {
		m := Merge(
			&Config{Header: http.Header{"content-type": {"text/plain"}}},
			&Config{Header: http.Header{"Content-Type": {MediaTypeXML}}},
		)
		assert.Equal(t, http.Header{"Content-Type": {MediaTypeXML}}, m.Header)
	})

	t.Run("multiple values replaced as a whole", func(t *testing.T) {
		m := Merge(
			&Config{Header: http.Header{"Accept": {"a", "b"}}},
			&Config{Header: http.Header{"Accept": {"c"}}},
		)
		assert.Equal(t, []string{"c"}, m.Header["Accept"])
	})
}

func TestMerge_throwError(t *testing.T) {
	tests := []struct {
		name     string
		defaults *bool
		call     *bool
		expected bool
	}{
		{"call false overrides default true", Bool(true), Bool(false), false},
		{"call true overrides default false", Bool(false), Bool(true), true},
		{"unset call inherits default", Bool(true), nil, true},
		{"both unset", nil, nil, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := Merge(&Config{ThrowError: test.defaults}, &Config{ThrowError: test.call})
			assert.Equal(t, test.expected, m.ThrowsError())
		})
	}
}

func TestMerge_scalars(t *testing.T) {
	d := &Config{
		URL:          "/a",
		BaseURL:      "http://a.io",
		ResponseType: ResponseTypeJSON,
		Data:         "x",
		Params:       url.Values{"a": {"1"}},
		Host:         "a.io",
	}

	m := Merge(d, &Config{})
	assert.Equal(t, "/a", m.URL)
	assert.Equal(t, "http://a.io", m.BaseURL)
	assert.Equal(t, ResponseTypeJSON, m.ResponseType)
	assert.Equal(t, "x", m.Data)
	assert.Equal(t, url.Values{"a": {"1"}}, m.Params)
	assert.Equal(t, "a.io", m.Host)

	m = Merge(d, &Config{
		URL:          "/b",
		BaseURL:      "http://b.io",
		ResponseType: ResponseTypeText,
		Data:         "y",
		Params:       url.Values{"b": {"2"}},
		Host:         "b.io",
	})
	assert.Equal(t, "/b", m.URL)
	assert.Equal(t, "http://b.io", m.BaseURL)
	assert.Equal(t, ResponseTypeText, m.ResponseType)
	assert.Equal(t, "y", m.Data)
	// params are replaced, not merged
	assert.Equal(t, url.Values{"b": {"2"}}, m.Params)
	assert.Equal(t, "b.io", m.Host)
}

func TestMerge_nil(t *testing.T) {
	assert.Equal(t, &Config{}, Merge(nil, nil))

	d := &Config{URL: "/a", Header: http.Header{"A": {"1"}}}
	m := Merge(d, nil)
	assert.Equal(t, "/a", m.URL)
	assert.Equal(t, http.Header{"A": {"1"}}, m.Header)
}

func TestMerge_doesNotModify(t *testing.T) {
	d := &Config{Header: http.Header{"A": {"1"}}, Params: url.Values{"p": {"1"}}, ThrowError: Bool(true)}
	c := &Config{Header: http.Header{"B": {"2"}}, ThrowError: Bool(false)}

	m := Merge(d, c)
	m.Header.Set("A", "changed")
	m.Query().Set("p", "changed")
	*m.ThrowError = true

	assert.Equal(t, http.Header{"A": {"1"}}, d.Header)
	assert.Equal(t, url.Values{"p": {"1"}}, d.Params)
	assert.Equal(t, http.Header{"B": {"2"}}, c.Header)
	assert.False(t, *c.ThrowError)
}

func TestMerge_interceptors(t *testing.T) {
	var calls []string
	d := &Config{
		RequestInterceptor: func(_ context.Context, c *Config) (*Config, error) {
			calls = append(calls, "d")
			return c, nil
		},
		Middleware: []Middleware{func(d Doer) Doer { return d }},
	}
	c := &Config{
		RequestInterceptor: func(_ context.Context, c *Config) (*Config, error) {
			calls = append(calls, "c")
			return c, nil
		},
		Middleware: []Middleware{func(d Doer) Doer { return d }},
	}

	m := Merge(d, c)
	_, err := m.RequestInterceptor(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, calls)
	assert.Len(t, m.Middleware, 2)

	t.Run("default only", func(t *testing.T) {
		calls = nil
		m := Merge(d, &Config{})
		_, err := m.RequestInterceptor(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, []string{"d"}, calls)
	})
}

func TestConfig_Clone(t *testing.T) {
	c := &Config{
		Header:           http.Header{"A": {"1"}},
		Params:           url.Values{"p": {"1"}},
		ThrowError:       Bool(true),
		TransferEncoding: []string{"chunked"},
		Trailer:          http.Header{"T": {"1"}},
		Middleware:       []Middleware{func(d Doer) Doer { return d }},
	}

	c2 := c.Clone()
	assert.Equal(t, c.Header, c2.Header)
	assert.Equal(t, c.Params, c2.Params)

	c2.Header.Set("A", "2")
	c2.Params.Set("p", "2")
	*c2.ThrowError = false
	c2.TransferEncoding[0] = "identity"
	c2.Trailer.Set("T", "2")
	c2.Middleware = append(c2.Middleware, nil)

	assert.Equal(t, "1", c.Header.Get("A"))
	assert.Equal(t, "1", c.Params.Get("p"))
	assert.True(t, *c.ThrowError)
	assert.Equal(t, "chunked", c.TransferEncoding[0])
	assert.Equal(t, "1", c.Trailer.Get("T"))
	assert.Len(t, c.Middleware, 1)
}

func TestConfig_HeadersAndQuery(t *testing.T) {
	c := &Config{}
	assert.NotNil(t, c.Headers())
	assert.NotNil(t, c.Header)
	assert.NotNil(t, c.Query())
	assert.NotNil(t, c.Params)
}

func TestParseResponseType(t *testing.T) {
	for _, s := range []string{"arraybuffer", "blob", "json", "text", "stream", "formdata", ""} {
		rt, err := ParseResponseType(s)
		require.NoError(t, err)
		assert.Equal(t, ResponseType(s), rt)
	}

	_, err := ParseResponseType("document")
	require.Error(t, err)
	assert.True(t, merry.Is(err, ErrInvalidResponseType))

	assert.False(t, ResponseType("").Valid())
}

func TestPresets(t *testing.T) {
	p := presets()
	assert.Equal(t, MediaTypeJSON, p.Header.Get(HeaderContentType))
	assert.True(t, p.ThrowsError())
	assert.Equal(t, ResponseTypeJSON, p.ResponseType)

	// each call returns a fresh copy
	p.Header.Set(HeaderContentType, "text/plain")
	assert.Equal(t, MediaTypeJSON, presets().Header.Get(HeaderContentType))
}
