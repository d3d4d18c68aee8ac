package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gemalto/fetchax"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	var inFlight float64
	doer := fetchax.DoerFunc(func(req *http.Request) (*http.Response, error) {
		inFlight = testutil.ToFloat64(m.requestsInFlight.WithLabelValues(req.Method, req.URL.Host))
		if req.URL.Path == "/missing" {
			return fetchax.MockResponse(404), nil
		}
		return fetchax.MockResponse(200), nil
	})

	c := fetchax.MustCreate(fetchax.BaseURL("http://a.io"), doer, m)
	ctx := context.Background()

	_, err := c.Get(ctx, "/")
	require.NoError(t, err)
	_, err = c.Post(ctx, "/", "x")
	require.NoError(t, err)
	_, err = c.Get(ctx, "/missing")
	require.Error(t, err)

	assert.Equal(t, float64(1), inFlight)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.requestsInFlight.WithLabelValues("GET", "a.io")))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "a.io", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "a.io", "200")))
	// rejected responses are still counted
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "a.io", "404")))

	assert.Equal(t, 3, testutil.CollectAndCount(m.requestDuration))

	expected := `
# HELP fetchax_requests_total Total number of HTTP requests sent
# TYPE fetchax_requests_total counter
fetchax_requests_total{host="a.io",method="GET",status="200"} 1
fetchax_requests_total{host="a.io",method="GET",status="404"} 1
fetchax_requests_total{host="a.io",method="POST",status="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fetchax_requests_total"))
}

func TestCollector_transportError(t *testing.T) {
	m := NewWithNamespace(prometheus.NewRegistry(), "test")

	boom := &url.Error{Op: "Get", URL: "http://a.io", Err: errors.New("refused")}
	c := fetchax.MustCreate(m, fetchax.FailingDoer(boom))

	_, err := c.Get(context.Background(), "http://a.io/")
	assert.Same(t, boom, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "a.io", StatusError)))
}

func TestNew_registersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() {
		New(reg)
	})
}
